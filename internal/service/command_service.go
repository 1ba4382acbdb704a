package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/dialog"
	"github.com/pricewatch/backend/internal/fetcher"
	"github.com/pricewatch/backend/internal/model"
	"github.com/pricewatch/backend/internal/repository"
	"github.com/pricewatch/backend/pkg/currency"
)

const helpText = "Commands:\n" +
	"ADD <amazon_link>\n" +
	"ADD <amazon_link> | <quantity>\n" +
	"ADD <amazon_link> | <nickname> | <relation_optional> | <quantity>\n" +
	"MY\n" +
	"ALL\n" +
	"FAMILY\n" +
	"REMOVEALL\n" +
	"REMOVEPERSON <name>\n" +
	"REMOVE <watch_id>\n" +
	"MUTE <watch_id>"

const badLinkText = "I could not read that Amazon link.\n" +
	"Please send a full product URL like:\n" +
	"ADD https://www.amazon.in/dp/B0XXXXXXXX"

// CommandService interprets one inbound chat message and produces the reply
// text. All user-facing failures come back as replies, not errors; an error
// return means infrastructure trouble and the caller should not reply at all.
type CommandService struct {
	userRepo     repository.UserRepositoryInterface
	familyRepo   repository.FamilyRepositoryInterface
	productRepo  repository.ProductRepositoryInterface
	watchRepo    repository.WatchlistRepositoryInterface
	mappingRepo  repository.MemberWishlistRepositoryInterface
	snapshotRepo repository.SnapshotRepositoryInterface

	dialogs dialog.Store
	fetch   PriceFetcher

	defaultMinDropPct  float64
	checkIntervalHours int
}

// NewCommandService creates a new command service
func NewCommandService(
	userRepo repository.UserRepositoryInterface,
	familyRepo repository.FamilyRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	watchRepo repository.WatchlistRepositoryInterface,
	mappingRepo repository.MemberWishlistRepositoryInterface,
	snapshotRepo repository.SnapshotRepositoryInterface,
	dialogs dialog.Store,
	fetch PriceFetcher,
	defaultMinDropPct float64,
	checkIntervalHours int,
) *CommandService {
	return &CommandService{
		userRepo:           userRepo,
		familyRepo:         familyRepo,
		productRepo:        productRepo,
		watchRepo:          watchRepo,
		mappingRepo:        mappingRepo,
		snapshotRepo:       snapshotRepo,
		dialogs:            dialogs,
		fetch:              fetch,
		defaultMinDropPct:  defaultMinDropPct,
		checkIntervalHours: checkIntervalHours,
	}
}

// HandleMessage dispatches one inbound message for a user key. A pending
// quantity dialog intercepts the message first; otherwise the leading
// keyword decides, and anything unrecognized gets the command help.
func (s *CommandService) HandleMessage(ctx context.Context, userKey, body string) (string, error) {
	text := strings.TrimSpace(body)
	upper := strings.ToUpper(text)

	pending, err := s.dialogs.Get(ctx, userKey)
	if err != nil {
		return "", fmt.Errorf("loading pending dialog: %w", err)
	}
	if pending != nil {
		reply, handled, err := s.resumeDialog(ctx, userKey, pending, text, upper)
		if err != nil {
			return "", err
		}
		if handled {
			return reply, nil
		}
	}

	switch {
	case strings.HasPrefix(upper, "ADD "):
		return s.handleAdd(ctx, userKey, parseAddPayload(strings.TrimSpace(text[4:])))
	case upper == "MY" || upper == "MYPERSONAL":
		return s.handleList(ctx, userKey, false)
	case upper == "ALL" || upper == "MYALL":
		return s.handleList(ctx, userKey, true)
	case upper == "FAMILY":
		return s.handleFamily(ctx, userKey)
	case upper == "REMOVEALL":
		return s.handleRemoveAll(ctx, userKey)
	case strings.HasPrefix(upper, "REMOVEPERSON "), strings.HasPrefix(upper, "REMOVEBY "):
		parts := strings.SplitN(text, " ", 2)
		return s.handleRemovePerson(ctx, userKey, parts[1])
	case strings.HasPrefix(upper, "REMOVE "):
		return s.handleRemoveOrMute(ctx, userKey, text, false)
	case strings.HasPrefix(upper, "MUTE "):
		return s.handleRemoveOrMute(ctx, userKey, text, true)
	default:
		return helpText, nil
	}
}

// AddItem runs the ADD flow with structured fields instead of the chat
// grammar, for the REST surface. A blank nickname means no family mapping.
func (s *CommandService) AddItem(ctx context.Context, userKey, link string, nickname, relation *string, quantity int) (string, error) {
	payload := addPayload{
		Link:     strings.TrimSpace(link),
		Relation: relation,
		Quantity: clampQuantity(quantity),
	}
	if nickname != nil {
		if clean := strings.TrimSpace(*nickname); clean != "" {
			payload.Nickname = &clean
		}
	}
	return s.handleAdd(ctx, userKey, payload)
}

// ListWishlist renders the caller's wishlist view for the REST surface.
func (s *CommandService) ListWishlist(ctx context.Context, userKey string, includeFamilyMapped bool) (string, error) {
	return s.handleList(ctx, userKey, includeFamilyMapped)
}

// FamilyWishlist renders the caller's family view for the REST surface.
func (s *CommandService) FamilyWishlist(ctx context.Context, userKey string) (string, error) {
	return s.handleFamily(ctx, userKey)
}

// resumeDialog advances a pending quantity dialog. While one is open it
// swallows every message: only YES/NO (in confirm) or a bare number resolve
// it, anything else re-prompts. handled=false falls through to keyword
// dispatch and only happens for an unrecognized stored stage.
func (s *CommandService) resumeDialog(ctx context.Context, userKey string, pending *dialog.Pending, text, upper string) (reply string, handled bool, err error) {
	switch pending.Stage {
	case dialog.StageConfirm:
		if upper == "NO" || upper == "N" {
			if err := s.dialogs.Clear(ctx, userKey); err != nil {
				return "", false, fmt.Errorf("clearing pending dialog: %w", err)
			}
			return "Okay, quantity unchanged.", true, nil
		}
		if upper == "YES" || upper == "Y" {
			next := *pending
			next.Stage = dialog.StageAmount
			if err := s.dialogs.Set(ctx, userKey, &next); err != nil {
				return "", false, fmt.Errorf("storing pending dialog: %w", err)
			}
			return "How many quantity should I add? Reply with a number (1-100).", true, nil
		}
		qty := tryParseQuantity(text)
		if qty == nil {
			return "Please reply YES or NO.", true, nil
		}
		reply, err = s.applyPendingQuantity(ctx, userKey, pending, *qty)
		return reply, true, err
	case dialog.StageAmount:
		qty := tryParseQuantity(text)
		if qty == nil {
			return "Please send only a number (1-100).", true, nil
		}
		reply, err = s.applyPendingQuantity(ctx, userKey, pending, *qty)
		return reply, true, err
	default:
		return "", false, nil
	}
}

// applyPendingQuantity adds the confirmed delta to the dialog's target row
// and clears the dialog. A vanished target also clears the dialog and asks
// the user to start over with ADD.
func (s *CommandService) applyPendingQuantity(ctx context.Context, userKey string, pending *dialog.Pending, delta int) (string, error) {
	var (
		total    int
		applyErr error
		notFound string
	)

	if pending.Target == dialog.TargetMapping {
		total, applyErr = s.mappingRepo.AddQuantity(ctx, pending.TargetID, delta)
		notFound = "Could not find that family mapping anymore."
	} else {
		total, applyErr = s.watchRepo.AddQuantity(ctx, pending.TargetID, delta)
		notFound = "Could not find that wishlist item anymore."
	}

	if applyErr != nil &&
		!errors.Is(applyErr, repository.ErrWatchlistNotFound) &&
		!errors.Is(applyErr, repository.ErrMappingNotFound) {
		return "", fmt.Errorf("updating quantity: %w", applyErr)
	}

	if err := s.dialogs.Clear(ctx, userKey); err != nil {
		return "", fmt.Errorf("clearing pending dialog: %w", err)
	}

	if applyErr != nil {
		return notFound + " Please try ADD again.", nil
	}
	return fmt.Sprintf("Updated quantity for %s: x%d.", pending.Label, total), nil
}

// handleAdd fetches the linked product, upserts it, and either creates a new
// watchlist entry or folds the request into the existing one. A nickname in
// the payload additionally maps the product to a family member.
func (s *CommandService) handleAdd(ctx context.Context, userKey string, payload addPayload) (string, error) {
	user, err := s.userRepo.GetOrCreateByKey(ctx, userKey)
	if err != nil {
		return "", fmt.Errorf("resolving user: %w", err)
	}

	fetched, err := s.fetch.Fetch(ctx, payload.Link)
	if err != nil {
		if fetcher.IsParseFailure(err) {
			return badLinkText, nil
		}
		return "", fmt.Errorf("fetching product: %w", err)
	}

	product := &model.Product{
		Source:          model.SourceAmazon,
		SourceProductID: fetched.ASIN,
		CanonicalName:   fetched.Title,
		ProductURL:      fetched.URL,
		LastKnownPrice:  decimal.NewNullDecimal(fetched.Price),
		Currency:        fetched.Currency,
	}
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		return "", fmt.Errorf("upserting product: %w", err)
	}

	existing, err := s.watchRepo.GetByUserAndProduct(ctx, user.ID, product.ID)
	if err != nil && !errors.Is(err, repository.ErrWatchlistNotFound) {
		return "", fmt.Errorf("loading watchlist entry: %w", err)
	}
	if existing != nil {
		return s.replyExistingWatch(ctx, user, product, existing, payload, fetched.Price)
	}

	quantity := payload.Quantity
	if payload.Nickname != nil {
		quantity = 0
	}
	watch := &model.Watchlist{
		UserID:         user.ID,
		ProductID:      product.ID,
		ReferencePrice: fetched.Price,
		MinDropPct:     s.defaultMinDropPct,
		Quantity:       quantity,
	}
	if err := s.watchRepo.Create(ctx, watch); err != nil {
		if errors.Is(err, repository.ErrWatchlistExists) {
			existing, getErr := s.watchRepo.GetByUserAndProduct(ctx, user.ID, product.ID)
			if getErr != nil {
				return "", fmt.Errorf("loading watchlist entry: %w", getErr)
			}
			return s.replyExistingWatch(ctx, user, product, existing, payload, fetched.Price)
		}
		return "", fmt.Errorf("creating watchlist entry: %w", err)
	}

	snapshot := &model.PriceSnapshot{
		ProductID:  product.ID,
		Price:      fetched.Price,
		InStock:    fetched.InStock,
		SourceURL:  fetched.URL,
		Confidence: fetched.Confidence,
	}
	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		return "", fmt.Errorf("recording price snapshot: %w", err)
	}

	mappedMsg := ""
	if payload.Nickname != nil {
		msg, err := s.mapToFamilyMember(ctx, user, product.ID, *payload.Nickname, payload.Relation, payload.Quantity)
		if err != nil {
			return "", err
		}
		mappedMsg = "\n" + msg
	}

	return fmt.Sprintf(
		"Added to your wishlist.\n%s\nReference price: %s\nQuantity: x%d\nI will check every %d hours and alert at >= %.0f%% drop.%s",
		product.CanonicalName, currency.Rupees(fetched.Price), watch.Quantity,
		s.checkIntervalHours, s.defaultMinDropPct, mappedMsg,
	), nil
}

// replyExistingWatch answers an ADD that collided with an existing watchlist
// entry: either map to the named family member, or open a quantity dialog on
// the user's own entry.
func (s *CommandService) replyExistingWatch(ctx context.Context, user *model.User, product *model.Product, existing *model.Watchlist, payload addPayload, price decimal.Decimal) (string, error) {
	mappedMsg := ""
	if payload.Nickname != nil {
		msg, err := s.mapToFamilyMember(ctx, user, product.ID, *payload.Nickname, payload.Relation, payload.Quantity)
		if err != nil {
			return "", err
		}
		mappedMsg = "\n" + msg
	} else {
		pending := &dialog.Pending{
			Stage:    dialog.StageConfirm,
			Target:   dialog.TargetWatchlist,
			TargetID: existing.ID,
			Label:    "your item",
		}
		if err := s.dialogs.Set(ctx, user.UserKey, pending); err != nil {
			return "", fmt.Errorf("storing pending dialog: %w", err)
		}
		mappedMsg = fmt.Sprintf(
			"\nItem already exists in your name (Qty x%d).\nDo you want to add more quantity? Reply YES or NO.",
			existing.Quantity,
		)
	}

	return fmt.Sprintf(
		"Already tracking this item.\n%s\nCurrent price: %s\nQuantity: x%d%s",
		product.CanonicalName, currency.Rupees(price), existing.Quantity, mappedMsg,
	), nil
}

// mapToFamilyMember attaches a product to a (possibly new) family member and
// returns the reply fragment. An existing mapping opens a quantity dialog
// instead of silently stacking quantities.
func (s *CommandService) mapToFamilyMember(ctx context.Context, user *model.User, productID int64, nickname string, relation *string, quantity int) (string, error) {
	cleanNickname := strings.TrimSpace(nickname)

	family, err := s.familyRepo.GetOrCreateByOwner(ctx, user.ID, fmt.Sprintf("%s family", user.UserKey))
	if err != nil {
		return "", fmt.Errorf("resolving family: %w", err)
	}

	member, err := s.familyRepo.GetMemberByNickname(ctx, family.ID, cleanNickname)
	switch {
	case err == nil:
		if relation != nil && (member.Relation == nil || *member.Relation != *relation) {
			if err := s.familyRepo.UpdateMemberRelation(ctx, member.ID, *relation); err != nil {
				return "", fmt.Errorf("updating member relation: %w", err)
			}
			member.Relation = relation
		}
	case errors.Is(err, repository.ErrFamilyMemberNotFound):
		member, err = s.createMember(ctx, family.ID, user.ID, cleanNickname, relation)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("loading family member: %w", err)
	}

	relationText := ""
	if member.Relation != nil && *member.Relation != "" {
		relationText = fmt.Sprintf(" (%s)", *member.Relation)
	}

	existing, err := s.mappingRepo.GetByMemberAndProduct(ctx, member.ID, productID)
	if err != nil && !errors.Is(err, repository.ErrMappingNotFound) {
		return "", fmt.Errorf("loading family mapping: %w", err)
	}

	if existing == nil {
		mapping := &model.MemberWishlist{
			FamilyMemberID: member.ID,
			ProductID:      productID,
			AddedByUserID:  user.ID,
			Quantity:       quantity,
		}
		err := s.mappingRepo.Create(ctx, mapping)
		if err == nil {
			return fmt.Sprintf("Mapped to family member: %s%s | Qty x%d.", member.Nickname, relationText, quantity), nil
		}
		if !errors.Is(err, repository.ErrMappingExists) {
			return "", fmt.Errorf("creating family mapping: %w", err)
		}
		existing, err = s.mappingRepo.GetByMemberAndProduct(ctx, member.ID, productID)
		if err != nil {
			return "", fmt.Errorf("loading family mapping: %w", err)
		}
	}

	pending := &dialog.Pending{
		Stage:    dialog.StageConfirm,
		Target:   dialog.TargetMapping,
		TargetID: existing.ID,
		Label:    member.Nickname + relationText,
	}
	if err := s.dialogs.Set(ctx, user.UserKey, pending); err != nil {
		return "", fmt.Errorf("storing pending dialog: %w", err)
	}

	return fmt.Sprintf(
		"Item already mapped to %s%s (Qty x%d).\nDo you want to add more quantity? Reply YES or NO.",
		member.Nickname, relationText, existing.Quantity,
	), nil
}

// createMember adds a nickname row to the family. The first member created
// for a family is linked to the owning user account so FAMILY lookups
// resolve; additional nicknames carry no account link of their own.
func (s *CommandService) createMember(ctx context.Context, familyID, ownerUserID int64, nickname string, relation *string) (*model.FamilyMember, error) {
	exists, err := s.familyRepo.MemberExistsForUser(ctx, familyID, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("checking family membership: %w", err)
	}

	member := &model.FamilyMember{
		FamilyID: familyID,
		Nickname: nickname,
		Relation: relation,
	}
	if !exists {
		member.UserID = &ownerUserID
	}

	if err := s.familyRepo.CreateMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrFamilyMemberExists) {
			return s.familyRepo.GetMemberByNickname(ctx, familyID, nickname)
		}
		return nil, fmt.Errorf("creating family member: %w", err)
	}
	return member, nil
}

// handleList renders the user's wishlist. The personal view hides entries
// held only to anchor family mappings (quantity zero).
func (s *CommandService) handleList(ctx context.Context, userKey string, includeFamilyMapped bool) (string, error) {
	user, err := s.userRepo.GetByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "No account found yet. Send: ADD <amazon_link>", nil
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	mappedLabels := make(map[int64][]string)
	mappedQty := make(map[int64]int)

	family, err := s.familyRepo.GetByOwner(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrFamilyNotFound) {
		return "", fmt.Errorf("loading family: %w", err)
	}
	if family != nil {
		mapped, err := s.mappingRepo.ListMappedForOwner(ctx, family.ID, user.ID)
		if err != nil {
			return "", fmt.Errorf("listing family mappings: %w", err)
		}
		for _, m := range mapped {
			relationText := ""
			if m.Relation != nil && *m.Relation != "" {
				relationText = fmt.Sprintf(" (%s)", *m.Relation)
			}
			label := fmt.Sprintf("%s%s x%d", m.Nickname, relationText, m.Quantity)
			if !containsFold(mappedLabels[m.ProductID], label) {
				mappedLabels[m.ProductID] = append(mappedLabels[m.ProductID], label)
			}
			mappedQty[m.ProductID] += m.Quantity
		}
	}

	items, err := s.watchRepo.ListActiveWithProducts(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("listing watchlist entries: %w", err)
	}
	if !includeFamilyMapped {
		personal := make([]model.WatchedItem, 0, len(items))
		for _, item := range items {
			if item.Quantity > 0 {
				personal = append(personal, item)
			}
		}
		items = personal
	}

	if len(items) == 0 {
		return "Your wishlist is empty. Send: ADD <amazon_link>", nil
	}

	title := "Your wishlist (personal):"
	if includeFamilyMapped {
		title = "Your wishlist (all):"
	}

	lines := []string{title}
	for idx, item := range items {
		muted := ""
		if item.IsMuted {
			muted = " (muted)"
		}
		totalQty := item.Quantity + mappedQty[item.ProductID]
		lines = append(lines, fmt.Sprintf(
			"%d. [%d] %s%s | Ref %s | Qty x%d | Total x%d",
			idx+1, item.ID, truncate(item.ProductName, 60), muted,
			currency.Rupees(item.ReferencePrice), item.Quantity, totalQty,
		))

		var recipients []string
		if item.Quantity > 0 {
			recipients = append(recipients, fmt.Sprintf("You x%d", item.Quantity))
		}
		recipients = append(recipients, mappedLabels[item.ProductID]...)
		if len(recipients) == 0 {
			recipients = []string{"Family only"}
		}
		lines = append(lines, "   Mapped to: "+strings.Join(recipients, ", "))
		lines = append(lines, "   "+item.ProductURL)
	}

	return strings.Join(lines, "\n"), nil
}

// handleFamily renders the family wishlist the user belongs to, grouped by
// member nickname in first-seen order.
func (s *CommandService) handleFamily(ctx context.Context, userKey string) (string, error) {
	user, err := s.userRepo.GetByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "No family found. Create one first.", nil
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	membership, err := s.familyRepo.GetMembershipForUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrFamilyMemberNotFound) {
			return "You are not part of a family yet.", nil
		}
		return "", fmt.Errorf("loading family membership: %w", err)
	}

	rows, err := s.mappingRepo.ListFamilyItems(ctx, membership.FamilyID)
	if err != nil {
		return "", fmt.Errorf("listing family wishlist: %w", err)
	}
	if len(rows) == 0 {
		return "Family wishlist is empty.", nil
	}

	type memberGroup struct {
		nickname string
		relation *string
		items    []string
	}
	var order []string
	groups := make(map[string]*memberGroup)

	for i := range rows {
		row := &rows[i]
		key := strings.ToLower(strings.TrimSpace(row.Nickname))
		group, ok := groups[key]
		if !ok {
			group = &memberGroup{nickname: row.Nickname, relation: row.Relation}
			groups[key] = group
			order = append(order, key)
		}
		if (group.relation == nil || *group.relation == "") && row.Relation != nil && *row.Relation != "" {
			group.relation = row.Relation
		}

		currentPrice := decimal.Zero
		if row.LastKnownPrice.Valid {
			currentPrice = row.LastKnownPrice.Decimal
		}
		details := fmt.Sprintf("%s | Current %s | Qty x%d",
			truncate(row.ProductName, 60), currency.Rupees(currentPrice), row.Quantity)
		if row.WatchID != nil {
			refPrice := decimal.Zero
			if row.ReferencePrice.Valid {
				refPrice = row.ReferencePrice.Decimal
			}
			minDrop := 0.0
			if row.MinDropPct != nil {
				minDrop = *row.MinDropPct
			}
			details = fmt.Sprintf("[%d] %s | Ref %s | Alert >= %.0f%%",
				*row.WatchID, details, currency.Rupees(refPrice), minDrop)
		}
		line := details + "\n    " + row.ProductURL
		if !containsString(group.items, line) {
			group.items = append(group.items, line)
		}
	}

	lines := []string{"Family wishlist:"}
	for _, key := range order {
		group := groups[key]
		relationText := ""
		if group.relation != nil && *group.relation != "" {
			relationText = fmt.Sprintf(" (%s)", *group.relation)
		}
		lines = append(lines, fmt.Sprintf("- %s%s:", group.nickname, relationText))
		for i, item := range group.items {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, item))
		}
	}

	return strings.Join(lines, "\n"), nil
}

// handleRemoveOrMute deactivates or mutes one of the user's own watchlist
// entries by id. A malformed id gets the command help rather than an error.
func (s *CommandService) handleRemoveOrMute(ctx context.Context, userKey, text string, mute bool) (string, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return helpText, nil
	}
	watchID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return helpText, nil
	}

	user, err := s.userRepo.GetByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "No account found.", nil
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	if mute {
		err = s.watchRepo.Mute(ctx, watchID, user.ID)
	} else {
		err = s.watchRepo.Deactivate(ctx, watchID, user.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrWatchlistNotFound) {
			return "Item not found in your wishlist.", nil
		}
		return "", fmt.Errorf("updating watchlist entry: %w", err)
	}

	if mute {
		return "Item muted.", nil
	}
	return "Item removed from tracking.", nil
}

// handleRemoveAll deactivates every watchlist entry and deletes every family
// mapping the user created.
func (s *CommandService) handleRemoveAll(ctx context.Context, userKey string) (string, error) {
	user, err := s.userRepo.GetByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "No account found.", nil
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	deactivated, err := s.watchRepo.DeactivateAllByUser(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("deactivating watchlist entries: %w", err)
	}

	removed, err := s.mappingRepo.DeleteForOwnedFamily(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("removing family mappings: %w", err)
	}

	return fmt.Sprintf(
		"Removed everything.\n- Deactivated watchlist items: %d\n- Removed family mappings: %d",
		deactivated, removed,
	), nil
}

// handleRemovePerson deletes the user's mappings to one family member by
// nickname, then deactivates watchlist entries left with nothing to track.
// The not-found reply echoes the argument as typed.
func (s *CommandService) handleRemovePerson(ctx context.Context, userKey, nickname string) (string, error) {
	user, err := s.userRepo.GetByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "No account found.", nil
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	family, err := s.familyRepo.GetByOwner(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrFamilyNotFound) {
			return "No family found.", nil
		}
		return "", fmt.Errorf("loading family: %w", err)
	}

	member, err := s.familyRepo.GetMemberByNickname(ctx, family.ID, strings.TrimSpace(nickname))
	if err != nil {
		if errors.Is(err, repository.ErrFamilyMemberNotFound) {
			return fmt.Sprintf("No family member found with name '%s'.", nickname), nil
		}
		return "", fmt.Errorf("loading family member: %w", err)
	}

	removed, err := s.mappingRepo.DeleteForOwnerByNickname(ctx, family.ID, user.ID, strings.TrimSpace(nickname))
	if err != nil {
		return "", fmt.Errorf("removing family mappings: %w", err)
	}

	cleaned, err := s.watchRepo.DeactivateOrphans(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("deactivating orphan watchlist entries: %w", err)
	}

	return fmt.Sprintf(
		"Removed items mapped to %s.\n- Family mappings removed: %d\n- Orphan watchlist items deactivated: %d",
		member.Nickname, removed, cleaned,
	), nil
}
