package trade

import (
	"context"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines persistence operations for orders. CreateAtomic
// is the only write path for new orders: header and items commit in one
// transaction, re-checking referenced catalog rows under lock, and any
// mid-write race surfaces as a conflict with zero partial rows.
type OrderRepository interface {
	FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*Order, error)
	FindByNumberForFarm(ctx context.Context, orderNumber string, farmID uuid.UUID) (*Order, error)
	FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	CreateAtomic(ctx context.Context, order *Order) error
	Save(ctx context.Context, order *Order) error
}

// CatalogItemRepository defines persistence operations for catalog items
type CatalogItemRepository interface {
	FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*CatalogItem, error)
	FindByIDsForFarm(ctx context.Context, ids []uuid.UUID, farmID uuid.UUID) ([]CatalogItem, error)
	FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) (*shared.Paginated[CatalogItem], error)
	Save(ctx context.Context, item *CatalogItem) error
}
