package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/trade"
	"github.com/farmops/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// idempotencyTTL bounds how long a submitted key blocks duplicates
const idempotencyTTL = 24 * time.Hour

// OrderService coordinates composite order writes: reference resolution,
// integrity validation, and the atomic persist. The order of operations
// is fixed: references are loaded with farm-scoped queries, the pure
// validator runs against those rows, and only a clean payload reaches
// storage. The storage layer re-checks the references under lock, so a
// reference deleted between validation and commit fails the whole write.
type OrderService struct {
	orderRepo   trade.OrderRepository
	catalogRepo trade.CatalogItemRepository
	roleRepo    party.RoleRepository
	partyRepo   party.Repository
	idempotency cache.IdempotencyStore
	logger      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo trade.OrderRepository,
	catalogRepo trade.CatalogItemRepository,
	roleRepo party.RoleRepository,
	partyRepo party.Repository,
	idempotency cache.IdempotencyStore,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		roleRepo:    roleRepo,
		partyRepo:   partyRepo,
		idempotency: idempotency,
		logger:      logger,
	}
}

// Create validates and persists a composite order write. All integrity
// violations are collected and returned together as a ValidationError;
// a duplicate idempotency key or a reference that vanished mid-write
// answers CONFLICT. Nothing is persisted unless every check passes.
func (s *OrderService) Create(ctx context.Context, authz *appidentity.Authorization, input CreateOrderInput) (*OrderView, error) {
	claimed := false
	if input.IdempotencyKey != "" && s.idempotency != nil {
		key := authz.FarmID.String() + ":" + input.IdempotencyKey
		ok, err := s.idempotency.Claim(ctx, key, idempotencyTTL)
		if err != nil {
			s.logger.Error("Idempotency claim failed", zap.Error(err))
			return nil, shared.ErrInternal
		}
		if !ok {
			return nil, shared.ErrConflict
		}
		claimed = true
		defer func() {
			// on failure the key is released so the client can retry
			if claimed {
				if err := s.idempotency.Release(ctx, key); err != nil {
					s.logger.Warn("Failed to release idempotency key", zap.Error(err))
				}
			}
		}()
	}

	refs, counterpartyName, err := s.resolveReferences(ctx, authz.FarmID, input)
	if err != nil {
		return nil, err
	}

	payload := toPayload(authz.FarmID, input)
	if result := trade.ValidateOrder(payload, refs); !result.Valid() {
		s.logger.Info("Order rejected by validation",
			zap.String("farm_id", authz.FarmID.String()),
			zap.Int("violations", len(result.Violations)))
		return nil, trade.NewValidationError(result)
	}

	order, err := s.buildOrder(authz, input, counterpartyName)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateAtomic(ctx, order); err != nil {
		s.logger.Warn("Atomic order create failed",
			zap.String("farm_id", authz.FarmID.String()),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return nil, err
	}
	claimed = false

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("farm_id", authz.FarmID.String()),
		zap.Int("items", len(order.Items)))

	view := toOrderView(order)
	return &view, nil
}

// Get loads one order in the caller's farm
func (s *OrderService) Get(ctx context.Context, authz *appidentity.Authorization, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.FindByIDForFarm(ctx, orderID, authz.FarmID)
	if err != nil {
		return nil, err
	}
	view := toOrderView(order)
	return &view, nil
}

// List pages through the farm's orders
func (s *OrderService) List(ctx context.Context, authz *appidentity.Authorization, filter shared.Filter) (*shared.Paginated[OrderView], error) {
	page, err := s.orderRepo.FindAllForFarm(ctx, authz.FarmID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toOrderView(&page.Items[i]))
	}

	result := shared.NewPaginated(views, page.Total, filter.Page, filter.PageSize)
	return &result, nil
}

// Confirm transitions a draft order to confirmed
func (s *OrderService) Confirm(ctx context.Context, authz *appidentity.Authorization, orderID uuid.UUID) (*OrderView, error) {
	return s.transition(ctx, authz, orderID, func(o *trade.Order) error { return o.Confirm() })
}

// Fulfill marks a confirmed order delivered
func (s *OrderService) Fulfill(ctx context.Context, authz *appidentity.Authorization, orderID uuid.UUID, deliveredAt time.Time) (*OrderView, error) {
	return s.transition(ctx, authz, orderID, func(o *trade.Order) error { return o.Fulfill(deliveredAt) })
}

// Cancel cancels an order that has not been fulfilled
func (s *OrderService) Cancel(ctx context.Context, authz *appidentity.Authorization, orderID uuid.UUID) (*OrderView, error) {
	return s.transition(ctx, authz, orderID, func(o *trade.Order) error { return o.Cancel() })
}

func (s *OrderService) transition(ctx context.Context, authz *appidentity.Authorization, orderID uuid.UUID, fn func(*trade.Order) error) (*OrderView, error) {
	order, err := s.orderRepo.FindByIDForFarm(ctx, orderID, authz.FarmID)
	if err != nil {
		return nil, err
	}

	if err := fn(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)))

	view := toOrderView(order)
	return &view, nil
}

// resolveReferences loads the rows the validator checks against, always
// through farm-scoped queries. A missing or foreign reference is not an
// error here; it is left absent so the validator reports it alongside
// every other violation.
func (s *OrderService) resolveReferences(ctx context.Context, farmID uuid.UUID, input CreateOrderInput) (trade.ReferenceSet, string, error) {
	refs := trade.ReferenceSet{CatalogItems: make(map[uuid.UUID]*trade.CatalogItem)}
	counterpartyName := ""

	role, err := s.roleRepo.FindByIDForFarm(ctx, input.PartyRoleID, farmID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return refs, "", err
	}
	if role != nil {
		refs.Counterparty = &trade.CounterpartyRef{ID: role.ID, FarmID: role.FarmID}
		if p, err := s.partyRepo.FindByRoleID(ctx, role.ID); err == nil {
			counterpartyName = p.DisplayName
		} else if !errors.Is(err, shared.ErrNotFound) {
			return refs, "", err
		}
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	seen := make(map[uuid.UUID]struct{})
	for _, item := range input.Items {
		if item.CatalogItemID == nil {
			continue
		}
		if _, ok := seen[*item.CatalogItemID]; ok {
			continue
		}
		seen[*item.CatalogItemID] = struct{}{}
		ids = append(ids, *item.CatalogItemID)
	}
	if len(ids) > 0 {
		items, err := s.catalogRepo.FindByIDsForFarm(ctx, ids, farmID)
		if err != nil {
			return refs, "", err
		}
		for i := range items {
			refs.CatalogItems[items[i].ID] = &items[i]
		}
	}

	return refs, counterpartyName, nil
}

func (s *OrderService) buildOrder(authz *appidentity.Authorization, input CreateOrderInput, counterpartyName string) (*trade.Order, error) {
	orderNumber := input.OrderNumber
	if orderNumber == "" {
		orderNumber = generateOrderNumber()
	}

	order, err := trade.NewOrder(authz.FarmID, orderNumber, input.PartyRoleID, counterpartyName, input.OrderDate)
	if err != nil {
		return nil, err
	}
	order.CreatedBy = &authz.UserID
	order.Notes = input.Notes

	for _, item := range input.Items {
		if err := order.AddItem(item.CatalogItemID, item.Description, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := order.SetCharges(input.Tax, input.ShippingCost); err != nil {
		return nil, err
	}
	if input.RequestedDeliveryDate != nil {
		if err := order.SetRequestedDeliveryDate(*input.RequestedDeliveryDate); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func toPayload(farmID uuid.UUID, input CreateOrderInput) trade.OrderPayload {
	items := make([]trade.OrderItemPayload, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, trade.OrderItemPayload{
			CatalogItemID: item.CatalogItemID,
			Description:   item.Description,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
		})
	}

	return trade.OrderPayload{
		FarmID:                farmID,
		PartyRoleID:           input.PartyRoleID,
		OrderDate:             input.OrderDate,
		RequestedDeliveryDate: input.RequestedDeliveryDate,
		Subtotal:              input.Subtotal,
		Tax:                   input.Tax,
		ShippingCost:          input.ShippingCost,
		Total:                 input.Total,
		Items:                 items,
	}
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}
