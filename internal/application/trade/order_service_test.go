package trade

import (
	"context"
	"testing"
	"time"

	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/farmops/backend/internal/domain/trade"
	"github.com/farmops/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumberForFarm(ctx context.Context, orderNumber string, farmID uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, orderNumber, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	args := m.Called(ctx, farmID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[trade.Order]), args.Error(1)
}

func (m *MockOrderRepository) CreateAtomic(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockCatalogItemRepository is a mock implementation of trade.CatalogItemRepository
type MockCatalogItemRepository struct {
	mock.Mock
}

func (m *MockCatalogItemRepository) FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*trade.CatalogItem, error) {
	args := m.Called(ctx, id, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.CatalogItem), args.Error(1)
}

func (m *MockCatalogItemRepository) FindByIDsForFarm(ctx context.Context, ids []uuid.UUID, farmID uuid.UUID) ([]trade.CatalogItem, error) {
	args := m.Called(ctx, ids, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.CatalogItem), args.Error(1)
}

func (m *MockCatalogItemRepository) FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.CatalogItem], error) {
	args := m.Called(ctx, farmID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[trade.CatalogItem]), args.Error(1)
}

func (m *MockCatalogItemRepository) Save(ctx context.Context, item *trade.CatalogItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of party.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.PartyRole, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.PartyRole), args.Error(1)
}

func (m *MockRoleRepository) FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*party.PartyRole, error) {
	args := m.Called(ctx, id, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.PartyRole), args.Error(1)
}

// MockPartyRepository is a mock implementation of party.Repository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByRoleID(ctx context.Context, roleID uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByFarmAndRoleType(ctx context.Context, farmID uuid.UUID, roleType party.RoleType, filter shared.Filter) (*shared.Paginated[party.Party], error) {
	args := m.Called(ctx, farmID, roleType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[party.Party]), args.Error(1)
}

func (m *MockPartyRepository) FindByFarmAndPrimaryEmail(ctx context.Context, farmID uuid.UUID, email string) ([]party.Party, error) {
	args := m.Called(ctx, farmID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Party), args.Error(1)
}

func (m *MockPartyRepository) Save(ctx context.Context, p *party.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type orderFixture struct {
	svc         *OrderService
	orderRepo   *MockOrderRepository
	catalogRepo *MockCatalogItemRepository
	roleRepo    *MockRoleRepository
	partyRepo   *MockPartyRepository
	idempotency cache.IdempotencyStore
	authz       *appidentity.Authorization
	farmID      uuid.UUID
	role        *party.PartyRole
	counterpart *party.Party
	catalogItem *trade.CatalogItem
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	farmID := uuid.New()

	counterpart, err := party.NewParty("Hilltop Dairy", "", party.PartyKindOrganization)
	require.NoError(t, err)
	role, err := counterpart.AddRole(farmID, party.RoleTypeCustomerBusiness, party.RoleMetadata{})
	require.NoError(t, err)

	price, err := valueobject.NewMoneyUSDFromString("12.50")
	require.NoError(t, err)
	catalogItem, err := trade.NewCatalogItem(farmID, "HAY-01", "Hay Bale", "bale", price)
	require.NoError(t, err)

	f := &orderFixture{
		orderRepo:   new(MockOrderRepository),
		catalogRepo: new(MockCatalogItemRepository),
		roleRepo:    new(MockRoleRepository),
		partyRepo:   new(MockPartyRepository),
		idempotency: cache.NewInMemoryIdempotencyStore(),
		farmID:      farmID,
		role:        role,
		counterpart: counterpart,
		catalogItem: catalogItem,
		authz: &appidentity.Authorization{
			UserID: uuid.New(),
			FarmID: farmID,
			Role:   identity.RoleMember,
		},
	}
	f.svc = NewOrderService(f.orderRepo, f.catalogRepo, f.roleRepo, f.partyRepo, f.idempotency, zap.NewNop())
	return f
}

func (f *orderFixture) balancedInput() CreateOrderInput {
	itemID := f.catalogItem.ID
	return CreateOrderInput{
		OrderNumber: "ORD-TEST-001",
		PartyRoleID: f.role.ID,
		OrderDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Subtotal:    decimal.RequireFromString("100.00"),
		Tax:         decimal.RequireFromString("8.00"),
		ShippingCost: decimal.RequireFromString("5.00"),
		Total:       decimal.RequireFromString("113.00"),
		Items: []OrderItemInput{
			{
				CatalogItemID: &itemID,
				Description:   "Hay Bale",
				Quantity:      decimal.RequireFromString("8"),
				UnitPrice:     decimal.RequireFromString("12.50"),
				TotalPrice:    decimal.RequireFromString("100.00"),
			},
		},
	}
}

func (f *orderFixture) expectHappyReferences(ctx context.Context) {
	f.roleRepo.On("FindByIDForFarm", ctx, f.role.ID, f.farmID).Return(f.role, nil)
	f.partyRepo.On("FindByRoleID", ctx, f.role.ID).Return(f.counterpart, nil)
	f.catalogRepo.On("FindByIDsForFarm", ctx, []uuid.UUID{f.catalogItem.ID}, f.farmID).
		Return([]trade.CatalogItem{*f.catalogItem}, nil)
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("balanced payload persists atomically", func(t *testing.T) {
		f := newOrderFixture(t)
		f.expectHappyReferences(ctx)
		f.orderRepo.On("CreateAtomic", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		view, err := f.svc.Create(ctx, f.authz, f.balancedInput())

		require.NoError(t, err)
		assert.Equal(t, "ORD-TEST-001", view.OrderNumber)
		assert.Equal(t, "Hilltop Dairy", view.CounterpartyName)
		assert.Equal(t, trade.OrderStatusDraft, view.Status)
		assert.True(t, decimal.RequireFromString("113.00").Equal(view.Total))
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("arithmetic violations are all collected and nothing persists", func(t *testing.T) {
		f := newOrderFixture(t)
		f.expectHappyReferences(ctx)

		input := f.balancedInput()
		input.Subtotal = decimal.RequireFromString("90.00")
		input.Total = decimal.RequireFromString("200.00")

		_, err := f.svc.Create(ctx, f.authz, input)

		var valErr *trade.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Len(t, valErr.Violations, 2)
		f.orderRepo.AssertNotCalled(t, "CreateAtomic", mock.Anything, mock.Anything)
	})

	t.Run("counterparty from another farm is a tenant reference violation", func(t *testing.T) {
		f := newOrderFixture(t)
		f.roleRepo.On("FindByIDForFarm", ctx, f.role.ID, f.farmID).Return(nil, shared.ErrNotFound)
		f.catalogRepo.On("FindByIDsForFarm", ctx, []uuid.UUID{f.catalogItem.ID}, f.farmID).
			Return([]trade.CatalogItem{*f.catalogItem}, nil)

		_, err := f.svc.Create(ctx, f.authz, f.balancedInput())

		var valErr *trade.ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Len(t, valErr.Violations, 1)
		assert.Equal(t, "party_role_id", valErr.Violations[0].Field)
		assert.Equal(t, "tenant_reference", valErr.Violations[0].Rule)
	})

	t.Run("foreign catalog item is a tenant reference violation", func(t *testing.T) {
		f := newOrderFixture(t)
		f.roleRepo.On("FindByIDForFarm", ctx, f.role.ID, f.farmID).Return(f.role, nil)
		f.partyRepo.On("FindByRoleID", ctx, f.role.ID).Return(f.counterpart, nil)
		f.catalogRepo.On("FindByIDsForFarm", ctx, []uuid.UUID{f.catalogItem.ID}, f.farmID).
			Return([]trade.CatalogItem{}, nil)

		_, err := f.svc.Create(ctx, f.authz, f.balancedInput())

		var valErr *trade.ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Len(t, valErr.Violations, 1)
		assert.Equal(t, "tenant_reference", valErr.Violations[0].Rule)
	})

	t.Run("duplicate idempotency key answers conflict without touching storage", func(t *testing.T) {
		f := newOrderFixture(t)
		f.expectHappyReferences(ctx)
		f.orderRepo.On("CreateAtomic", ctx, mock.AnythingOfType("*trade.Order")).Return(nil).Once()

		input := f.balancedInput()
		input.IdempotencyKey = "client-key-1"

		_, err := f.svc.Create(ctx, f.authz, input)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.authz, input)
		assert.ErrorIs(t, err, shared.ErrConflict)
		f.orderRepo.AssertNumberOfCalls(t, "CreateAtomic", 1)
	})

	t.Run("idempotency key is released after validation failure", func(t *testing.T) {
		f := newOrderFixture(t)
		f.expectHappyReferences(ctx)
		f.orderRepo.On("CreateAtomic", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		bad := f.balancedInput()
		bad.Total = decimal.RequireFromString("999.99")
		bad.IdempotencyKey = "client-key-2"

		_, err := f.svc.Create(ctx, f.authz, bad)
		var valErr *trade.ValidationError
		require.ErrorAs(t, err, &valErr)

		good := f.balancedInput()
		good.IdempotencyKey = "client-key-2"
		_, err = f.svc.Create(ctx, f.authz, good)
		assert.NoError(t, err)
	})

	t.Run("mid-write conflict from storage surfaces unchanged", func(t *testing.T) {
		f := newOrderFixture(t)
		f.expectHappyReferences(ctx)
		f.orderRepo.On("CreateAtomic", ctx, mock.AnythingOfType("*trade.Order")).Return(shared.ErrConflict)

		_, err := f.svc.Create(ctx, f.authz, f.balancedInput())

		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestOrderService_Transitions(t *testing.T) {
	ctx := context.Background()

	newPersistedOrder := func(t *testing.T, f *orderFixture) *trade.Order {
		t.Helper()
		order, err := trade.NewOrder(f.farmID, "ORD-1", f.role.ID, "Hilltop Dairy", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NoError(t, order.AddItem(nil, "Hay", decimal.NewFromInt(2), decimal.RequireFromString("10.00")))
		return order
	}

	t.Run("confirm then fulfill", func(t *testing.T) {
		f := newOrderFixture(t)
		order := newPersistedOrder(t, f)
		f.orderRepo.On("FindByIDForFarm", ctx, order.ID, f.farmID).Return(order, nil)
		f.orderRepo.On("Save", ctx, order).Return(nil)

		view, err := f.svc.Confirm(ctx, f.authz, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusConfirmed, view.Status)

		view, err = f.svc.Fulfill(ctx, f.authz, order.ID, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusFulfilled, view.Status)
		require.NotNil(t, view.ActualDeliveryDate)
	})

	t.Run("cancel after fulfillment is rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		order := newPersistedOrder(t, f)
		require.NoError(t, order.Confirm())
		require.NoError(t, order.Fulfill(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)))
		f.orderRepo.On("FindByIDForFarm", ctx, order.ID, f.farmID).Return(order, nil)

		_, err := f.svc.Cancel(ctx, f.authz, order.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("order in another farm answers not found", func(t *testing.T) {
		f := newOrderFixture(t)
		foreignID := uuid.New()
		f.orderRepo.On("FindByIDForFarm", ctx, foreignID, f.farmID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Get(ctx, f.authz, foreignID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
