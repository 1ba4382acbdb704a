package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pricewatch/backend/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (user_key, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, query, user.UserKey, user.Name).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) GetByKey(ctx context.Context, userKey string) (*model.User, error) {
	var user model.User
	query := `SELECT * FROM users WHERE user_key = $1`
	err := r.db.GetContext(ctx, &user, query, userKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

// GetOrCreateByKey resolves a channel key to a user, creating the row on
// first contact. The no-op DO UPDATE makes RETURNING yield the existing row,
// so concurrent first messages from one sender resolve to a single user.
func (r *UserRepository) GetOrCreateByKey(ctx context.Context, userKey string) (*model.User, error) {
	var user model.User
	query := `
		INSERT INTO users (user_key)
		VALUES ($1)
		ON CONFLICT (user_key) DO UPDATE SET user_key = EXCLUDED.user_key
		RETURNING id, user_key, name, created_at`

	err := r.db.GetContext(ctx, &user, query, userKey)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
