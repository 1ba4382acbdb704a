package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/pricewatch/backend/internal/fetcher"
	"github.com/pricewatch/backend/internal/model"
)

// MockUserRepo is a mock implementation of UserRepositoryInterface
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByKey(ctx context.Context, userKey string) (*model.User, error) {
	args := m.Called(ctx, userKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetOrCreateByKey(ctx context.Context, userKey string) (*model.User, error) {
	args := m.Called(ctx, userKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockFamilyRepo is a mock implementation of FamilyRepositoryInterface
type MockFamilyRepo struct {
	mock.Mock
}

func (m *MockFamilyRepo) GetByOwner(ctx context.Context, ownerUserID int64) (*model.Family, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Family), args.Error(1)
}

func (m *MockFamilyRepo) GetOrCreateByOwner(ctx context.Context, ownerUserID int64, name string) (*model.Family, error) {
	args := m.Called(ctx, ownerUserID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Family), args.Error(1)
}

func (m *MockFamilyRepo) GetMemberByID(ctx context.Context, id int64) (*model.FamilyMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FamilyMember), args.Error(1)
}

func (m *MockFamilyRepo) GetMemberByNickname(ctx context.Context, familyID int64, nickname string) (*model.FamilyMember, error) {
	args := m.Called(ctx, familyID, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FamilyMember), args.Error(1)
}

func (m *MockFamilyRepo) GetMembershipForUser(ctx context.Context, userID int64) (*model.FamilyMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FamilyMember), args.Error(1)
}

func (m *MockFamilyRepo) MemberExistsForUser(ctx context.Context, familyID, userID int64) (bool, error) {
	args := m.Called(ctx, familyID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFamilyRepo) CreateMember(ctx context.Context, member *model.FamilyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockFamilyRepo) UpdateMemberRelation(ctx context.Context, memberID int64, relation string) error {
	args := m.Called(ctx, memberID, relation)
	return args.Error(0)
}

func (m *MockFamilyRepo) ListMembers(ctx context.Context, familyID int64) ([]model.FamilyMember, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FamilyMember), args.Error(1)
}

// MockProductRepo is a mock implementation of ProductRepositoryInterface
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Upsert(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepo) GetBySourceID(ctx context.Context, source, sourceProductID string) (*model.Product, error) {
	args := m.Called(ctx, source, sourceProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

// MockWatchRepo is a mock implementation of WatchlistRepositoryInterface
type MockWatchRepo struct {
	mock.Mock
}

func (m *MockWatchRepo) Create(ctx context.Context, watch *model.Watchlist) error {
	args := m.Called(ctx, watch)
	return args.Error(0)
}

func (m *MockWatchRepo) GetByID(ctx context.Context, id int64) (*model.Watchlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Watchlist), args.Error(1)
}

func (m *MockWatchRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Watchlist, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Watchlist), args.Error(1)
}

func (m *MockWatchRepo) ListActiveByUser(ctx context.Context, userID int64) ([]model.Watchlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Watchlist), args.Error(1)
}

func (m *MockWatchRepo) ListActive(ctx context.Context) ([]model.Watchlist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Watchlist), args.Error(1)
}

func (m *MockWatchRepo) ListActiveWithProducts(ctx context.Context, userID int64) ([]model.WatchedItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WatchedItem), args.Error(1)
}

func (m *MockWatchRepo) AddQuantity(ctx context.Context, id int64, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockWatchRepo) Mute(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockWatchRepo) Deactivate(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockWatchRepo) DeactivateAllByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWatchRepo) DeactivateOrphans(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMappingRepo is a mock implementation of MemberWishlistRepositoryInterface
type MockMappingRepo struct {
	mock.Mock
}

func (m *MockMappingRepo) Create(ctx context.Context, mapping *model.MemberWishlist) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepo) GetByID(ctx context.Context, id int64) (*model.MemberWishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MemberWishlist), args.Error(1)
}

func (m *MockMappingRepo) GetByMemberAndProduct(ctx context.Context, memberID, productID int64) (*model.MemberWishlist, error) {
	args := m.Called(ctx, memberID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MemberWishlist), args.Error(1)
}

func (m *MockMappingRepo) AddQuantity(ctx context.Context, id int64, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockMappingRepo) ListByProduct(ctx context.Context, productID int64) ([]model.MemberWishlist, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MemberWishlist), args.Error(1)
}

func (m *MockMappingRepo) ListMappedForOwner(ctx context.Context, familyID, addedByUserID int64) ([]model.MappedItem, error) {
	args := m.Called(ctx, familyID, addedByUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MappedItem), args.Error(1)
}

func (m *MockMappingRepo) ListFamilyItems(ctx context.Context, familyID int64) ([]model.FamilyItem, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FamilyItem), args.Error(1)
}

func (m *MockMappingRepo) DeleteForOwnerByNickname(ctx context.Context, familyID, addedByUserID int64, nickname string) (int64, error) {
	args := m.Called(ctx, familyID, addedByUserID, nickname)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingRepo) DeleteForOwnedFamily(ctx context.Context, ownerUserID int64) (int64, error) {
	args := m.Called(ctx, ownerUserID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSnapshotRepo is a mock implementation of SnapshotRepositoryInterface
type MockSnapshotRepo struct {
	mock.Mock
}

func (m *MockSnapshotRepo) Create(ctx context.Context, snapshot *model.PriceSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepo) ListByProduct(ctx context.Context, productID int64, limit int) ([]model.PriceSnapshot, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PriceSnapshot), args.Error(1)
}

// MockAlertRepo is a mock implementation of AlertRepositoryInterface
type MockAlertRepo struct {
	mock.Mock
}

func (m *MockAlertRepo) HasOpenForPrice(ctx context.Context, watchlistID int64, newPrice decimal.Decimal) (bool, error) {
	args := m.Called(ctx, watchlistID, newPrice)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepo) CreateForWatch(ctx context.Context, alerts []model.Alert, lastAlertedPrice decimal.Decimal, cooldownUntil time.Time) error {
	args := m.Called(ctx, alerts, lastAlertedPrice, cooldownUntil)
	return args.Error(0)
}

func (m *MockAlertRepo) ListPending(ctx context.Context) ([]model.Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Alert), args.Error(1)
}

func (m *MockAlertRepo) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)
	return args.Error(0)
}

func (m *MockAlertRepo) MarkFailed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAlertRepo) LogNotification(ctx context.Context, log *model.NotificationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// MockFetcher is a mock implementation of PriceFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetcher.Result), args.Error(1)
}

// MockRouter is a mock implementation of MessageRouter
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Send(ctx context.Context, userKey, text string) (string, string, error) {
	args := m.Called(ctx, userKey, text)
	return args.String(0), args.String(1), args.Error(2)
}

// MockFanOuter is a mock implementation of AlertFanOuter
type MockFanOuter struct {
	mock.Mock
}

func (m *MockFanOuter) FanOut(ctx context.Context, watch *model.Watchlist, snapshot *model.PriceSnapshot) ([]model.Alert, error) {
	args := m.Called(ctx, watch, snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Alert), args.Error(1)
}
