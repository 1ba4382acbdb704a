package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pricewatch/backend/internal/model"
)

var ErrMappingNotFound = errors.New("family mapping not found")
var ErrMappingExists = errors.New("family mapping already exists")

// MemberWishlistRepository handles database operations for the per-member
// gift mappings and the joined wishlist views built on them.
type MemberWishlistRepository struct {
	db *sqlx.DB
}

func NewMemberWishlistRepository(db *sqlx.DB) *MemberWishlistRepository {
	return &MemberWishlistRepository{db: db}
}

func (r *MemberWishlistRepository) Create(ctx context.Context, mapping *model.MemberWishlist) error {
	query := `
		INSERT INTO member_wishlist (family_member_id, product_id, added_by_user_id, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		mapping.FamilyMemberID, mapping.ProductID, mapping.AddedByUserID, mapping.Quantity,
	).Scan(&mapping.ID, &mapping.CreatedAt)
	if isUniqueViolation(err) {
		return ErrMappingExists
	}
	return err
}

func (r *MemberWishlistRepository) GetByID(ctx context.Context, id int64) (*model.MemberWishlist, error) {
	var mapping model.MemberWishlist
	query := `SELECT * FROM member_wishlist WHERE id = $1`
	err := r.db.GetContext(ctx, &mapping, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMappingNotFound
	}
	return &mapping, err
}

func (r *MemberWishlistRepository) GetByMemberAndProduct(ctx context.Context, memberID, productID int64) (*model.MemberWishlist, error) {
	var mapping model.MemberWishlist
	query := `SELECT * FROM member_wishlist WHERE family_member_id = $1 AND product_id = $2`
	err := r.db.GetContext(ctx, &mapping, query, memberID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMappingNotFound
	}
	return &mapping, err
}

// AddQuantity bumps quantity by delta and returns the new total.
func (r *MemberWishlistRepository) AddQuantity(ctx context.Context, id int64, delta int) (int, error) {
	var quantity int
	query := `UPDATE member_wishlist SET quantity = quantity + $2 WHERE id = $1 RETURNING quantity`
	err := r.db.GetContext(ctx, &quantity, query, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMappingNotFound
	}
	return quantity, err
}

// ListByProduct returns every mapping of a product across all families,
// newest first. Alert fan-out walks this list.
func (r *MemberWishlistRepository) ListByProduct(ctx context.Context, productID int64) ([]model.MemberWishlist, error) {
	var mappings []model.MemberWishlist
	query := `SELECT * FROM member_wishlist WHERE product_id = $1 ORDER BY id DESC`
	err := r.db.SelectContext(ctx, &mappings, query, productID)
	return mappings, err
}

// ListMappedForOwner returns the mappings a user created in their own family,
// with member names joined in, in mapping creation order.
func (r *MemberWishlistRepository) ListMappedForOwner(ctx context.Context, familyID, addedByUserID int64) ([]model.MappedItem, error) {
	var items []model.MappedItem
	query := `
		SELECT mw.product_id, fm.nickname, fm.relation, mw.quantity
		FROM member_wishlist mw
		JOIN family_members fm ON fm.id = mw.family_member_id
		WHERE fm.family_id = $1 AND mw.added_by_user_id = $2
		ORDER BY mw.id ASC`

	err := r.db.SelectContext(ctx, &items, query, familyID, addedByUserID)
	return items, err
}

// ListFamilyItems returns the full family wishlist: every mapping in the
// family joined with its product and, when the mapper still actively tracks
// the product, their watchlist entry.
func (r *MemberWishlistRepository) ListFamilyItems(ctx context.Context, familyID int64) ([]model.FamilyItem, error) {
	var items []model.FamilyItem
	query := `
		SELECT fm.id AS member_id, fm.nickname, fm.relation,
		       p.id AS product_id, p.canonical_name AS product_name, p.product_url, p.last_known_price,
		       mw.quantity,
		       w.id AS watch_id, w.reference_price, w.min_drop_pct
		FROM member_wishlist mw
		JOIN family_members fm ON fm.id = mw.family_member_id
		JOIN products p ON p.id = mw.product_id
		LEFT JOIN watchlists w
		       ON w.user_id = mw.added_by_user_id AND w.product_id = mw.product_id AND w.is_active = TRUE
		WHERE fm.family_id = $1
		ORDER BY fm.nickname ASC, mw.id ASC`

	err := r.db.SelectContext(ctx, &items, query, familyID)
	return items, err
}

// DeleteForOwnerByNickname removes the mappings a user created for every
// member of their family matching the nickname, case-insensitively.
func (r *MemberWishlistRepository) DeleteForOwnerByNickname(ctx context.Context, familyID, addedByUserID int64, nickname string) (int64, error) {
	query := `
		DELETE FROM member_wishlist mw
		USING family_members fm
		WHERE fm.id = mw.family_member_id
		  AND fm.family_id = $1
		  AND mw.added_by_user_id = $2
		  AND LOWER(fm.nickname) = LOWER($3)`

	result, err := r.db.ExecContext(ctx, query, familyID, addedByUserID, nickname)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteForOwnedFamily removes every mapping a user created in the family
// they own.
func (r *MemberWishlistRepository) DeleteForOwnedFamily(ctx context.Context, ownerUserID int64) (int64, error) {
	query := `
		DELETE FROM member_wishlist mw
		USING family_members fm, families f
		WHERE fm.id = mw.family_member_id
		  AND f.id = fm.family_id
		  AND f.owner_user_id = $1
		  AND mw.added_by_user_id = $1`

	result, err := r.db.ExecContext(ctx, query, ownerUserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
