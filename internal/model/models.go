package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a chat identity. UserKey is channel-qualified: a bare phone number
// for WhatsApp, "tg:<chat_id>" for Telegram. Created lazily on first inbound
// message.
type User struct {
	ID        int64     `db:"id" json:"id"`
	UserKey   string    `db:"user_key" json:"userKey"`
	Name      *string   `db:"name" json:"name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Family groups the members a user tracks gift items for. One family per
// owning user, created on first mapping.
type Family struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	OwnerUserID int64     `db:"owner_user_id" json:"ownerUserId"`
	InviteCode  string    `db:"invite_code" json:"inviteCode"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// FamilyMember is a named slot inside a family. UserID is set when the slot
// is backed by a real account and nil for nickname-only members. Nicknames
// are unique within a family under case-insensitive comparison.
type FamilyMember struct {
	ID        int64     `db:"id" json:"id"`
	FamilyID  int64     `db:"family_id" json:"familyId"`
	UserID    *int64    `db:"user_id" json:"userId,omitempty"`
	Nickname  string    `db:"nickname" json:"nickname"`
	Relation  *string   `db:"relation" json:"relation,omitempty"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Product sources
const (
	SourceAmazon = "amazon"
)

// Product is a marketplace item identified by its source product id (ASIN).
// Rows are refreshed in place on every successful fetch, never duplicated.
type Product struct {
	ID              int64               `db:"id" json:"id"`
	Source          string              `db:"source" json:"source"`
	SourceProductID string              `db:"source_product_id" json:"sourceProductId"`
	CanonicalName   string              `db:"canonical_name" json:"canonicalName"`
	ProductURL      string              `db:"product_url" json:"productUrl"`
	LastKnownPrice  decimal.NullDecimal `db:"last_known_price" json:"lastKnownPrice,omitempty"`
	Currency        string              `db:"currency" json:"currency"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updatedAt"`
}

// Watchlist is a user's personal tracking record for one product. Quantity
// may be zero when the entry exists only to anchor family mappings.
// Soft-deleted via IsActive, silenced via IsMuted, never hard-deleted.
type Watchlist struct {
	ID               int64               `db:"id" json:"id"`
	UserID           int64               `db:"user_id" json:"userId"`
	ProductID        int64               `db:"product_id" json:"productId"`
	ReferencePrice   decimal.Decimal     `db:"reference_price" json:"referencePrice"`
	MinDropPct       float64             `db:"min_drop_pct" json:"minDropPct"`
	Quantity         int                 `db:"quantity" json:"quantity"`
	IsMuted          bool                `db:"is_muted" json:"isMuted"`
	IsActive         bool                `db:"is_active" json:"isActive"`
	LastAlertedPrice decimal.NullDecimal `db:"last_alerted_price" json:"lastAlertedPrice,omitempty"`
	CooldownUntil    *time.Time          `db:"cooldown_until" json:"cooldownUntil,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
}

// MemberWishlist maps one family member to one product, attributed to the
// user who created the mapping. Unique per (member, product).
type MemberWishlist struct {
	ID             int64     `db:"id" json:"id"`
	FamilyMemberID int64     `db:"family_member_id" json:"familyMemberId"`
	ProductID      int64     `db:"product_id" json:"productId"`
	AddedByUserID  int64     `db:"added_by_user_id" json:"addedByUserId"`
	Quantity       int       `db:"quantity" json:"quantity"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Snapshot confidence levels
const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// PriceSnapshot is an immutable price observation, one row per successful
// fetch (manual ADD or scheduled poll).
type PriceSnapshot struct {
	ID         int64           `db:"id" json:"id"`
	ProductID  int64           `db:"product_id" json:"productId"`
	Price      decimal.Decimal `db:"price" json:"price"`
	InStock    bool            `db:"in_stock" json:"inStock"`
	SourceURL  string          `db:"source_url" json:"sourceUrl"`
	Confidence string          `db:"confidence" json:"confidence"`
	CapturedAt time.Time       `db:"captured_at" json:"capturedAt"`
}

// Alert types
const (
	AlertTypeSelf   = "self_price_drop"
	AlertTypeFamily = "family_gift_drop"
)

// Alert statuses
const (
	AlertStatusPending = "pending"
	AlertStatusSent    = "sent"
	AlertStatusFailed  = "failed"
)

// Alert is one notification decision: a watchlist entry crossed its drop
// threshold for one recipient. FamilyMemberID is nil for self alerts.
type Alert struct {
	ID             int64           `db:"id" json:"id"`
	WatchlistID    int64           `db:"watchlist_id" json:"watchlistId"`
	UserID         int64           `db:"user_id" json:"userId"`
	ProductID      int64           `db:"product_id" json:"productId"`
	FamilyMemberID *int64          `db:"family_member_id" json:"familyMemberId,omitempty"`
	AlertType      string          `db:"alert_type" json:"alertType"`
	DropPct        float64         `db:"drop_pct" json:"dropPct"`
	OldPrice       decimal.Decimal `db:"old_price" json:"oldPrice"`
	NewPrice       decimal.Decimal `db:"new_price" json:"newPrice"`
	Status         string          `db:"status" json:"status"` // pending, sent, failed
	SentAt         *time.Time      `db:"sent_at" json:"sentAt,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
}

// WatchedItem is one row of a user's wishlist view: a watchlist entry with
// its product's display fields joined in.
type WatchedItem struct {
	ID             int64           `db:"id" json:"id"`
	ProductID      int64           `db:"product_id" json:"productId"`
	ReferencePrice decimal.Decimal `db:"reference_price" json:"referencePrice"`
	MinDropPct     float64         `db:"min_drop_pct" json:"minDropPct"`
	Quantity       int             `db:"quantity" json:"quantity"`
	IsMuted        bool            `db:"is_muted" json:"isMuted"`
	ProductName    string          `db:"product_name" json:"productName"`
	ProductURL     string          `db:"product_url" json:"productUrl"`
}

// MappedItem is a flattened view of one family mapping for wishlist
// summaries: who a product is mapped to and at what quantity.
type MappedItem struct {
	ProductID int64   `db:"product_id" json:"productId"`
	Nickname  string  `db:"nickname" json:"nickname"`
	Relation  *string `db:"relation" json:"relation,omitempty"`
	Quantity  int     `db:"quantity" json:"quantity"`
}

// FamilyItem is one row of the family wishlist view: a member/product pair
// with the mapper's live watchlist entry joined in when one is active.
type FamilyItem struct {
	MemberID       int64               `db:"member_id" json:"memberId"`
	Nickname       string              `db:"nickname" json:"nickname"`
	Relation       *string             `db:"relation" json:"relation,omitempty"`
	ProductID      int64               `db:"product_id" json:"productId"`
	ProductName    string              `db:"product_name" json:"productName"`
	ProductURL     string              `db:"product_url" json:"productUrl"`
	LastKnownPrice decimal.NullDecimal `db:"last_known_price" json:"lastKnownPrice,omitempty"`
	Quantity       int                 `db:"quantity" json:"quantity"`
	WatchID        *int64              `db:"watch_id" json:"watchId,omitempty"`
	ReferencePrice decimal.NullDecimal `db:"reference_price" json:"referencePrice,omitempty"`
	MinDropPct     *float64            `db:"min_drop_pct" json:"minDropPct,omitempty"`
}

// NotificationLog records one delivery attempt for an alert. Payload holds
// the rendered message on success and the error string on failure.
type NotificationLog struct {
	ID                int64     `db:"id" json:"id"`
	AlertID           int64     `db:"alert_id" json:"alertId"`
	Provider          string    `db:"provider" json:"provider"` // meta_whatsapp, telegram
	ProviderMessageID *string   `db:"provider_message_id" json:"providerMessageId,omitempty"`
	Payload           *string   `db:"payload" json:"payload,omitempty"`
	Success           bool      `db:"success" json:"success"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}
