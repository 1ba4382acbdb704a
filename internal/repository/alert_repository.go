package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/model"
)

var ErrAlertNotFound = errors.New("alert not found")

// AlertRepository handles database operations for alerts and their delivery
// logs.
type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// HasOpenForPrice reports whether an undelivered or already-sent alert exists
// for this watchlist entry at exactly this price. Used to suppress duplicate
// emissions while a price holds steady.
func (r *AlertRepository) HasOpenForPrice(ctx context.Context, watchlistID int64, newPrice decimal.Decimal) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM alerts
			WHERE watchlist_id = $1 AND new_price = $2 AND status IN ('pending', 'sent')
		)`

	err := r.db.GetContext(ctx, &exists, query, watchlistID, newPrice)
	return exists, err
}

// CreateForWatch inserts one emission's alert rows and advances the owning
// watchlist entry's alert state in a single transaction, so a crash cannot
// leave alerts recorded without the cooldown armed or vice versa. All alerts
// must belong to the same watchlist entry.
func (r *AlertRepository) CreateForWatch(ctx context.Context, alerts []model.Alert, lastAlertedPrice decimal.Decimal, cooldownUntil time.Time) error {
	if len(alerts) == 0 {
		return errors.New("no alerts to create")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insertQuery := `
		INSERT INTO alerts (watchlist_id, user_id, product_id, family_member_id, alert_type, drop_pct, old_price, new_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for i := range alerts {
		a := &alerts[i]
		err = tx.QueryRowxContext(ctx, insertQuery,
			a.WatchlistID, a.UserID, a.ProductID, a.FamilyMemberID,
			a.AlertType, a.DropPct, a.OldPrice, a.NewPrice, a.Status,
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return err
		}
	}

	updateQuery := `UPDATE watchlists SET last_alerted_price = $2, cooldown_until = $3 WHERE id = $1`
	_, err = tx.ExecContext(ctx, updateQuery, alerts[0].WatchlistID, lastAlertedPrice, cooldownUntil)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *AlertRepository) ListPending(ctx context.Context) ([]model.Alert, error) {
	var alerts []model.Alert
	query := `SELECT * FROM alerts WHERE status = 'pending' ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &alerts, query)
	return alerts, err
}

func (r *AlertRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `UPDATE alerts SET status = 'sent', sent_at = $2 WHERE id = $1`
	return r.execByID(ctx, query, id, sentAt)
}

func (r *AlertRepository) MarkFailed(ctx context.Context, id int64) error {
	query := `UPDATE alerts SET status = 'failed' WHERE id = $1`
	return r.execByID(ctx, query, id)
}

func (r *AlertRepository) LogNotification(ctx context.Context, log *model.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (alert_id, provider, provider_message_id, payload, success)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, query,
		log.AlertID, log.Provider, log.ProviderMessageID, log.Payload, log.Success,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *AlertRepository) execByID(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlertNotFound
	}
	return nil
}
