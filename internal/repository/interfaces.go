package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/model"
)

//go:generate mockery --name=UserRepositoryInterface --output=../mocks --outpkg=mocks
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByKey(ctx context.Context, userKey string) (*model.User, error)
	GetOrCreateByKey(ctx context.Context, userKey string) (*model.User, error)
}

//go:generate mockery --name=FamilyRepositoryInterface --output=../mocks --outpkg=mocks
type FamilyRepositoryInterface interface {
	GetByOwner(ctx context.Context, ownerUserID int64) (*model.Family, error)
	GetOrCreateByOwner(ctx context.Context, ownerUserID int64, name string) (*model.Family, error)
	GetMemberByID(ctx context.Context, id int64) (*model.FamilyMember, error)
	GetMemberByNickname(ctx context.Context, familyID int64, nickname string) (*model.FamilyMember, error)
	GetMembershipForUser(ctx context.Context, userID int64) (*model.FamilyMember, error)
	MemberExistsForUser(ctx context.Context, familyID, userID int64) (bool, error)
	CreateMember(ctx context.Context, member *model.FamilyMember) error
	UpdateMemberRelation(ctx context.Context, memberID int64, relation string) error
	ListMembers(ctx context.Context, familyID int64) ([]model.FamilyMember, error)
}

//go:generate mockery --name=ProductRepositoryInterface --output=../mocks --outpkg=mocks
type ProductRepositoryInterface interface {
	Upsert(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetBySourceID(ctx context.Context, source, sourceProductID string) (*model.Product, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error
}

//go:generate mockery --name=WatchlistRepositoryInterface --output=../mocks --outpkg=mocks
type WatchlistRepositoryInterface interface {
	Create(ctx context.Context, watch *model.Watchlist) error
	GetByID(ctx context.Context, id int64) (*model.Watchlist, error)
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Watchlist, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]model.Watchlist, error)
	ListActive(ctx context.Context) ([]model.Watchlist, error)
	ListActiveWithProducts(ctx context.Context, userID int64) ([]model.WatchedItem, error)
	AddQuantity(ctx context.Context, id int64, delta int) (int, error)
	Mute(ctx context.Context, id, userID int64) error
	Deactivate(ctx context.Context, id, userID int64) error
	DeactivateAllByUser(ctx context.Context, userID int64) (int64, error)
	DeactivateOrphans(ctx context.Context, userID int64) (int64, error)
}

//go:generate mockery --name=MemberWishlistRepositoryInterface --output=../mocks --outpkg=mocks
type MemberWishlistRepositoryInterface interface {
	Create(ctx context.Context, mapping *model.MemberWishlist) error
	GetByID(ctx context.Context, id int64) (*model.MemberWishlist, error)
	GetByMemberAndProduct(ctx context.Context, memberID, productID int64) (*model.MemberWishlist, error)
	AddQuantity(ctx context.Context, id int64, delta int) (int, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.MemberWishlist, error)
	ListMappedForOwner(ctx context.Context, familyID, addedByUserID int64) ([]model.MappedItem, error)
	ListFamilyItems(ctx context.Context, familyID int64) ([]model.FamilyItem, error)
	DeleteForOwnerByNickname(ctx context.Context, familyID, addedByUserID int64, nickname string) (int64, error)
	DeleteForOwnedFamily(ctx context.Context, ownerUserID int64) (int64, error)
}

//go:generate mockery --name=SnapshotRepositoryInterface --output=../mocks --outpkg=mocks
type SnapshotRepositoryInterface interface {
	Create(ctx context.Context, snapshot *model.PriceSnapshot) error
	ListByProduct(ctx context.Context, productID int64, limit int) ([]model.PriceSnapshot, error)
}

//go:generate mockery --name=AlertRepositoryInterface --output=../mocks --outpkg=mocks
type AlertRepositoryInterface interface {
	HasOpenForPrice(ctx context.Context, watchlistID int64, newPrice decimal.Decimal) (bool, error)
	CreateForWatch(ctx context.Context, alerts []model.Alert, lastAlertedPrice decimal.Decimal, cooldownUntil time.Time) error
	ListPending(ctx context.Context) ([]model.Alert, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64) error
	LogNotification(ctx context.Context, log *model.NotificationLog) error
}
