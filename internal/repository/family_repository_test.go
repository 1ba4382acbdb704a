package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/pricewatch/backend/internal/model"
)

func TestFamilyRepository_GetOrCreateByOwner(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewFamilyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "owner_user_id", "invite_code", "created_at"}).
		AddRow(int64(2), "919876543210 family", int64(1), "a1b2c3d4", time.Now())

	mock.ExpectQuery(`ON CONFLICT \(owner_user_id\) DO UPDATE`).
		WithArgs("919876543210 family", int64(1), sqlmock.AnyArg()).
		WillReturnRows(rows)

	family, err := repo.GetOrCreateByOwner(context.Background(), 1, "919876543210 family")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), family.ID)
	assert.Equal(t, "a1b2c3d4", family.InviteCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepository_GetMemberByNickname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		nickname  string
		setupMock func(sqlmock.Sqlmock)
		wantErr   bool
		errType   error
	}{
		{
			name:     "case insensitive match",
			nickname: "MOM",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "family_id", "user_id", "nickname", "relation", "is_active", "created_at"}).
					AddRow(int64(3), int64(2), nil, "mom", "mother", true, time.Now())
				mock.ExpectQuery(`LOWER\(nickname\) = LOWER\(\$2\)`).
					WithArgs(int64(2), "MOM").
					WillReturnRows(rows)
			},
			wantErr: false,
		},
		{
			name:     "not found",
			nickname: "uncle",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`LOWER\(nickname\) = LOWER\(\$2\)`).
					WithArgs(int64(2), "uncle").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errType: ErrFamilyMemberNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewFamilyRepository(db)

			tt.setupMock(mock)

			member, err := repo.GetMemberByNickname(context.Background(), 2, tt.nickname)

			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.errType)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "mom", member.Nickname)
				assert.Nil(t, member.UserID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFamilyRepository_CreateMember(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewFamilyRepository(db)

	relation := "mother"
	member := &model.FamilyMember{FamilyID: 2, Nickname: "mom", Relation: &relation}

	rows := sqlmock.NewRows([]string{"id", "is_active", "created_at"}).
		AddRow(int64(3), true, time.Now())

	mock.ExpectQuery(`INSERT INTO family_members`).
		WithArgs(member.FamilyID, nil, member.Nickname, member.Relation).
		WillReturnRows(rows)

	err := repo.CreateMember(context.Background(), member)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), member.ID)
	assert.True(t, member.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepository_CreateMember_Duplicate(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewFamilyRepository(db)

	member := &model.FamilyMember{FamilyID: 2, Nickname: "mom"}

	mock.ExpectQuery(`INSERT INTO family_members`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateMember(context.Background(), member)

	assert.ErrorIs(t, err, ErrFamilyMemberExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepository_MemberExistsForUser(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewFamilyRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(rows)

	exists, err := repo.MemberExistsForUser(context.Background(), 2, 1)

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
