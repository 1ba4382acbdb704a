package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pricewatch/backend/internal/model"
)

var ErrWatchlistNotFound = errors.New("watchlist entry not found")
var ErrWatchlistExists = errors.New("watchlist entry already exists")

type WatchlistRepository struct {
	db *sqlx.DB
}

func NewWatchlistRepository(db *sqlx.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

func (r *WatchlistRepository) Create(ctx context.Context, watch *model.Watchlist) error {
	query := `
		INSERT INTO watchlists (user_id, product_id, reference_price, min_drop_pct, quantity, is_muted, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		watch.UserID, watch.ProductID, watch.ReferencePrice,
		watch.MinDropPct, watch.Quantity, watch.IsMuted, watch.IsActive,
	).Scan(&watch.ID, &watch.CreatedAt)
	if isUniqueViolation(err) {
		return ErrWatchlistExists
	}
	return err
}

func (r *WatchlistRepository) GetByID(ctx context.Context, id int64) (*model.Watchlist, error) {
	var watch model.Watchlist
	query := `SELECT * FROM watchlists WHERE id = $1`
	err := r.db.GetContext(ctx, &watch, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWatchlistNotFound
	}
	return &watch, err
}

// GetByUserAndProduct looks up regardless of is_active, so a deactivated
// entry still blocks a duplicate and can be revived by a later ADD.
func (r *WatchlistRepository) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Watchlist, error) {
	var watch model.Watchlist
	query := `SELECT * FROM watchlists WHERE user_id = $1 AND product_id = $2`
	err := r.db.GetContext(ctx, &watch, query, userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWatchlistNotFound
	}
	return &watch, err
}

func (r *WatchlistRepository) ListActiveByUser(ctx context.Context, userID int64) ([]model.Watchlist, error) {
	var watches []model.Watchlist
	query := `SELECT * FROM watchlists WHERE user_id = $1 AND is_active = TRUE ORDER BY id ASC`
	err := r.db.SelectContext(ctx, &watches, query, userID)
	return watches, err
}

func (r *WatchlistRepository) ListActive(ctx context.Context) ([]model.Watchlist, error) {
	var watches []model.Watchlist
	query := `SELECT * FROM watchlists WHERE is_active = TRUE ORDER BY id ASC`
	err := r.db.SelectContext(ctx, &watches, query)
	return watches, err
}

// ListActiveWithProducts returns a user's active entries with product display
// fields joined in, for wishlist replies.
func (r *WatchlistRepository) ListActiveWithProducts(ctx context.Context, userID int64) ([]model.WatchedItem, error) {
	var items []model.WatchedItem
	query := `
		SELECT w.id, w.product_id, w.reference_price, w.min_drop_pct, w.quantity, w.is_muted,
		       p.canonical_name AS product_name, p.product_url
		FROM watchlists w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1 AND w.is_active = TRUE
		ORDER BY w.id ASC`

	err := r.db.SelectContext(ctx, &items, query, userID)
	return items, err
}

// AddQuantity bumps quantity by delta and returns the new total.
func (r *WatchlistRepository) AddQuantity(ctx context.Context, id int64, delta int) (int, error) {
	var quantity int
	query := `UPDATE watchlists SET quantity = quantity + $2 WHERE id = $1 RETURNING quantity`
	err := r.db.GetContext(ctx, &quantity, query, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrWatchlistNotFound
	}
	return quantity, err
}

func (r *WatchlistRepository) Mute(ctx context.Context, id, userID int64) error {
	query := `UPDATE watchlists SET is_muted = TRUE WHERE id = $1 AND user_id = $2 AND is_active = TRUE`
	return r.execOwned(ctx, query, id, userID)
}

func (r *WatchlistRepository) Deactivate(ctx context.Context, id, userID int64) error {
	query := `UPDATE watchlists SET is_active = FALSE WHERE id = $1 AND user_id = $2 AND is_active = TRUE`
	return r.execOwned(ctx, query, id, userID)
}

func (r *WatchlistRepository) DeactivateAllByUser(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE watchlists SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeactivateOrphans retires active entries that hold no personal quantity and
// no remaining family mapping created by this user in the family they own.
func (r *WatchlistRepository) DeactivateOrphans(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE watchlists w
		SET is_active = FALSE
		WHERE w.user_id = $1
		  AND w.is_active = TRUE
		  AND w.quantity <= 0
		  AND NOT EXISTS (
			SELECT 1
			FROM member_wishlist mw
			JOIN family_members fm ON fm.id = mw.family_member_id
			JOIN families f ON f.id = fm.family_id
			WHERE f.owner_user_id = $1
			  AND mw.added_by_user_id = $1
			  AND mw.product_id = w.product_id
			  AND mw.quantity > 0
		  )`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *WatchlistRepository) execOwned(ctx context.Context, query string, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWatchlistNotFound
	}
	return nil
}
