package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts a product or refreshes its name, URL and price in place.
// Products are keyed by source product id, so repeated ADDs of the same ASIN
// always converge on one row.
func (r *ProductRepository) Upsert(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (source, source_product_id, canonical_name, product_url, last_known_price, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_product_id) DO UPDATE SET
			canonical_name = EXCLUDED.canonical_name,
			product_url = EXCLUDED.product_url,
			last_known_price = EXCLUDED.last_known_price,
			currency = EXCLUDED.currency,
			updated_at = NOW()
		RETURNING id, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		product.Source, product.SourceProductID, product.CanonicalName,
		product.ProductURL, product.LastKnownPrice, product.Currency,
	).Scan(&product.ID, &product.UpdatedAt)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1`
	err := r.db.GetContext(ctx, &product, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return &product, err
}

func (r *ProductRepository) GetBySourceID(ctx context.Context, source, sourceProductID string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE source = $1 AND source_product_id = $2`
	err := r.db.GetContext(ctx, &product, query, source, sourceProductID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return &product, err
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	query := `UPDATE products SET last_known_price = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, price)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}
