// Package dialog stores pending quantity-confirmation state per chat user.
//
// A pending dialog is created when an ADD collides with an existing
// watchlist entry or family mapping, and is resolved (or abandoned) by the
// user's next messages: YES/NO, then a bare number. At most one dialog is
// kept per user key; a newer collision overwrites the older question.
package dialog

import "context"

type Stage string

const (
	// StageConfirm awaits a YES/NO reply.
	StageConfirm Stage = "confirm"
	// StageAmount awaits a bare number reply.
	StageAmount Stage = "amount"
)

type Target string

const (
	TargetWatchlist Target = "watchlist"
	TargetMapping   Target = "member_wishlist"
)

// Pending is one unresolved quantity question.
type Pending struct {
	Stage    Stage  `json:"stage"`
	Target   Target `json:"target"`
	TargetID int64  `json:"targetId"`
	Label    string `json:"label"`
}

// Store keeps pending dialogs keyed by user key. Get returns (nil, nil) when
// no dialog is pending. Implementations may expire entries after a TTL.
type Store interface {
	Get(ctx context.Context, userKey string) (*Pending, error)
	Set(ctx context.Context, userKey string, pending *Pending) error
	Clear(ctx context.Context, userKey string) error
}
