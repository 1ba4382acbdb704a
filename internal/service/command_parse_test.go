package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func TestParseAddPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		expected addPayload
	}{
		{
			name:     "link only",
			payload:  "https://www.amazon.in/dp/B0EXAMPLE1",
			expected: addPayload{Link: "https://www.amazon.in/dp/B0EXAMPLE1", Quantity: 1},
		},
		{
			name:     "link and quantity",
			payload:  "https://www.amazon.in/dp/B0EXAMPLE1 | 3",
			expected: addPayload{Link: "https://www.amazon.in/dp/B0EXAMPLE1", Quantity: 3},
		},
		{
			name:     "link and nickname",
			payload:  "https://www.amazon.in/dp/B0EXAMPLE1 | Mom",
			expected: addPayload{Link: "https://www.amazon.in/dp/B0EXAMPLE1", Nickname: strPtr("Mom"), Quantity: 1},
		},
		{
			name:     "link nickname relation",
			payload:  "https://www.amazon.in/dp/B0EXAMPLE1 | Mom | mother",
			expected: addPayload{Link: "https://www.amazon.in/dp/B0EXAMPLE1", Nickname: strPtr("Mom"), Relation: strPtr("mother"), Quantity: 1},
		},
		{
			name:     "link nickname quantity",
			payload:  "https://www.amazon.in/dp/B0EXAMPLE1 | Mom | 2",
			expected: addPayload{Link: "https://www.amazon.in/dp/B0EXAMPLE1", Nickname: strPtr("Mom"), Quantity: 2},
		},
		{
			name:     "full form",
			payload:  "https://www.amazon.in/dp/B0EXAMPLE1 | Mom | mother | 2",
			expected: addPayload{Link: "https://www.amazon.in/dp/B0EXAMPLE1", Nickname: strPtr("Mom"), Relation: strPtr("mother"), Quantity: 2},
		},
		{
			name:     "full form with unparsable quantity defaults to 1",
			payload:  "link | Mom | mother | many",
			expected: addPayload{Link: "link", Nickname: strPtr("Mom"), Relation: strPtr("mother"), Quantity: 1},
		},
		{
			name:     "quantity clamped to 100",
			payload:  "link | 500",
			expected: addPayload{Link: "link", Quantity: 100},
		},
		{
			name:     "empty relation segment kept nil",
			payload:  "link | Mom |  | 4",
			expected: addPayload{Link: "link", Nickname: strPtr("Mom"), Quantity: 4},
		},
		{
			name:     "empty nickname segment kept nil",
			payload:  "link |  | mother",
			expected: addPayload{Link: "link", Relation: strPtr("mother"), Quantity: 1},
		},
		{
			name:     "signed number is a nickname not a quantity",
			payload:  "link | +5",
			expected: addPayload{Link: "link", Nickname: strPtr("+5"), Quantity: 1},
		},
		{
			name:     "empty payload",
			payload:  "",
			expected: addPayload{Link: "", Quantity: 1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, parseAddPayload(tt.payload))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		expected int
	}{
		{"3", 3},
		{" 7 ", 7},
		{"0", 1},
		{"-2", 1},
		{"100", 100},
		{"101", 100},
		{"abc", 1},
		{"", 1},
		{"2.5", 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, parseQuantity(tt.raw))
		})
	}
}

func TestTryParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected *int
	}{
		{name: "plain number", raw: "4", expected: intPtr(4)},
		{name: "clamped low", raw: "0", expected: intPtr(1)},
		{name: "clamped high", raw: "250", expected: intPtr(100)},
		{name: "word", raw: "four", expected: nil},
		{name: "empty", raw: "", expected: nil},
		{name: "yes is not a number", raw: "YES", expected: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tryParseQuantity(tt.raw))
		})
	}
}

func intPtr(n int) *int {
	return &n
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 60))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("", 10))

	// Rune-aware, not byte-aware.
	assert.Equal(t, "₹₹₹", truncate("₹₹₹₹₹", 3))
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	list := []string{"Mom (mother) x2", "Dad x1"}
	assert.True(t, containsFold(list, "mom (MOTHER) x2"))
	assert.False(t, containsFold(list, "Sis x1"))
}
