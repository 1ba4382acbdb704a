package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pricewatch/backend/internal/model"
)

var ErrFamilyNotFound = errors.New("family not found")
var ErrFamilyMemberNotFound = errors.New("family member not found")
var ErrFamilyMemberExists = errors.New("family member already exists")

type FamilyRepository struct {
	db *sqlx.DB
}

func NewFamilyRepository(db *sqlx.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) GetByOwner(ctx context.Context, ownerUserID int64) (*model.Family, error) {
	var family model.Family
	query := `SELECT * FROM families WHERE owner_user_id = $1`
	err := r.db.GetContext(ctx, &family, query, ownerUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFamilyNotFound
	}
	return &family, err
}

// GetOrCreateByOwner returns the owner's family, creating it with a fresh
// invite code on first use. Each user owns at most one family.
func (r *FamilyRepository) GetOrCreateByOwner(ctx context.Context, ownerUserID int64, name string) (*model.Family, error) {
	var family model.Family
	query := `
		INSERT INTO families (name, owner_user_id, invite_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_user_id) DO UPDATE SET owner_user_id = EXCLUDED.owner_user_id
		RETURNING id, name, owner_user_id, invite_code, created_at`

	inviteCode := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	err := r.db.GetContext(ctx, &family, query, name, ownerUserID, inviteCode)
	if err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) GetMemberByID(ctx context.Context, id int64) (*model.FamilyMember, error) {
	var member model.FamilyMember
	query := `SELECT * FROM family_members WHERE id = $1`
	err := r.db.GetContext(ctx, &member, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFamilyMemberNotFound
	}
	return &member, err
}

// GetMemberByNickname matches case-insensitively. Newest row wins should the
// family predate the per-family nickname constraint.
func (r *FamilyRepository) GetMemberByNickname(ctx context.Context, familyID int64, nickname string) (*model.FamilyMember, error) {
	var member model.FamilyMember
	query := `
		SELECT * FROM family_members
		WHERE family_id = $1 AND LOWER(nickname) = LOWER($2)
		ORDER BY id DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &member, query, familyID, nickname)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFamilyMemberNotFound
	}
	return &member, err
}

// GetMembershipForUser returns the earliest family membership held by a user
// account, across all families.
func (r *FamilyRepository) GetMembershipForUser(ctx context.Context, userID int64) (*model.FamilyMember, error) {
	var member model.FamilyMember
	query := `SELECT * FROM family_members WHERE user_id = $1 ORDER BY id ASC LIMIT 1`
	err := r.db.GetContext(ctx, &member, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFamilyMemberNotFound
	}
	return &member, err
}

func (r *FamilyRepository) MemberExistsForUser(ctx context.Context, familyID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, familyID, userID)
	return exists, err
}

func (r *FamilyRepository) CreateMember(ctx context.Context, member *model.FamilyMember) error {
	query := `
		INSERT INTO family_members (family_id, user_id, nickname, relation)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		member.FamilyID, member.UserID, member.Nickname, member.Relation,
	).Scan(&member.ID, &member.IsActive, &member.CreatedAt)
	if isUniqueViolation(err) {
		return ErrFamilyMemberExists
	}
	return err
}

func (r *FamilyRepository) UpdateMemberRelation(ctx context.Context, memberID int64, relation string) error {
	query := `UPDATE family_members SET relation = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, memberID, relation)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFamilyMemberNotFound
	}
	return nil
}

func (r *FamilyRepository) ListMembers(ctx context.Context, familyID int64) ([]model.FamilyMember, error) {
	var members []model.FamilyMember
	query := `SELECT * FROM family_members WHERE family_id = $1 ORDER BY id ASC`
	err := r.db.SelectContext(ctx, &members, query, familyID)
	return members, err
}
