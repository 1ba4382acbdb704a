package service

import (
	"strconv"
	"strings"
)

// addPayload is the parsed argument tail of an ADD command.
type addPayload struct {
	Link     string
	Nickname *string
	Relation *string
	Quantity int
}

// parseAddPayload splits the pipe-delimited ADD arguments. The grammar is
// positional: the first segment is always the link. One extra segment is a
// quantity when numeric, otherwise a nickname. Two extra segments are nickname
// plus quantity-or-relation. Three or more are nickname, relation, quantity.
func parseAddPayload(payload string) addPayload {
	parts := strings.Split(payload, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	out := addPayload{Link: parts[0], Quantity: 1}

	switch {
	case len(parts) == 2:
		if isDigits(parts[1]) {
			out.Quantity = parseQuantity(parts[1])
		} else if parts[1] != "" {
			out.Nickname = &parts[1]
		}
	case len(parts) >= 3:
		if parts[1] != "" {
			out.Nickname = &parts[1]
		}
		if len(parts) >= 4 {
			if parts[2] != "" {
				out.Relation = &parts[2]
			}
			out.Quantity = parseQuantity(parts[3])
		} else if isDigits(parts[2]) {
			out.Quantity = parseQuantity(parts[2])
		} else if parts[2] != "" {
			out.Relation = &parts[2]
		}
	}
	return out
}

// parseQuantity reads a quantity argument, defaulting to 1 when missing or
// unparsable and clamping to [1, 100].
func parseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return clampQuantity(qty)
}

// tryParseQuantity is parseQuantity without the default: nil means "not a
// number", so dialog stages can re-prompt instead of assuming 1.
func tryParseQuantity(raw string) *int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	qty = clampQuantity(qty)
	return &qty
}

func clampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	if qty > 100 {
		return 100
	}
	return qty
}

// isDigits reports whether s is a non-empty run of ASCII digits. Signed or
// decimal values do not count, mirroring how the ADD grammar tells a quantity
// segment from a nickname.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// truncate shortens a display string to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// containsFold reports whether list holds target under case folding.
func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
