package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pricewatch/backend/internal/model"
)

func TestProductRepository_Upsert(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewProductRepository(db)

	ctx := context.Background()
	product := &model.Product{
		Source:          model.SourceAmazon,
		SourceProductID: "B0EXAMPLE1",
		CanonicalName:   "Example Headphones",
		ProductURL:      "https://www.amazon.in/dp/B0EXAMPLE1",
		LastKnownPrice:  decimal.NewNullDecimal(decimal.NewFromFloat(2999)),
		Currency:        "INR",
	}

	rows := sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(5), time.Now())

	mock.ExpectQuery(`ON CONFLICT \(source_product_id\) DO UPDATE`).
		WithArgs(product.Source, product.SourceProductID, product.CanonicalName,
			product.ProductURL, product.LastKnownPrice, product.Currency).
		WillReturnRows(rows)

	err := repo.Upsert(ctx, product)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), product.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock, int64)
		wantErr   bool
		errType   error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock, id int64) {
				rows := sqlmock.NewRows([]string{"id", "source", "source_product_id", "canonical_name", "product_url", "last_known_price", "currency", "updated_at"}).
					AddRow(id, "amazon", "B0EXAMPLE1", "Example Headphones", "https://www.amazon.in/dp/B0EXAMPLE1", decimal.NewFromFloat(2999), "INR", time.Now())
				mock.ExpectQuery(`SELECT \* FROM products WHERE id = \$1`).
					WithArgs(id).
					WillReturnRows(rows)
			},
			wantErr: false,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock, id int64) {
				mock.ExpectQuery(`SELECT \* FROM products WHERE id = \$1`).
					WithArgs(id).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errType: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewProductRepository(db)

			ctx := context.Background()
			tt.setupMock(mock, int64(5))

			product, err := repo.GetByID(ctx, 5)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errType != nil {
					assert.ErrorIs(t, err, tt.errType)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, product)
				assert.Equal(t, "B0EXAMPLE1", product.SourceProductID)
				assert.True(t, product.LastKnownPrice.Valid)
				assert.True(t, product.LastKnownPrice.Decimal.Equal(decimal.NewFromFloat(2999)))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_UpdatePrice(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewProductRepository(db)

	ctx := context.Background()
	price := decimal.NewFromFloat(2499)

	mock.ExpectExec(`UPDATE products SET last_known_price = \$2`).
		WithArgs(int64(5), price).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePrice(ctx, 5, price)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdatePrice_NotFound(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewProductRepository(db)

	ctx := context.Background()

	mock.ExpectExec(`UPDATE products SET last_known_price = \$2`).
		WithArgs(int64(99), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePrice(ctx, 99, decimal.NewFromFloat(100))

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
