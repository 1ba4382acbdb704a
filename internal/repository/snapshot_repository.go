package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pricewatch/backend/internal/model"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot *model.PriceSnapshot) error {
	query := `
		INSERT INTO price_snapshots (product_id, price, in_stock, source_url, confidence)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, captured_at`

	return r.db.QueryRowxContext(ctx, query,
		snapshot.ProductID, snapshot.Price, snapshot.InStock,
		snapshot.SourceURL, snapshot.Confidence,
	).Scan(&snapshot.ID, &snapshot.CapturedAt)
}

func (r *SnapshotRepository) ListByProduct(ctx context.Context, productID int64, limit int) ([]model.PriceSnapshot, error) {
	var snapshots []model.PriceSnapshot
	query := `SELECT * FROM price_snapshots WHERE product_id = $1 ORDER BY captured_at DESC, id DESC LIMIT $2`
	err := r.db.SelectContext(ctx, &snapshots, query, productID, limit)
	return snapshots, err
}
