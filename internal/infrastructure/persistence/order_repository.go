package persistence

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/trade"
	"github.com/farmops/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM. It
// takes the Database wrapper rather than a bare gorm.DB because its
// composite writes run under the wrapper's per-transaction statement
// timeout.
type GormOrderRepository struct {
	db *Database
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *Database) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByIDForFarm finds an order by ID within a farm
func (r *GormOrderRepository) FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.DB.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		Scopes(tenant.FarmScope(farmID)).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumberForFarm finds an order by order number within a farm
func (r *GormOrderRepository) FindByNumberForFarm(ctx context.Context, orderNumber string, farmID uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.DB.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		Scopes(tenant.FarmScope(farmID)).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForFarm finds all orders for a farm with pagination
func (r *GormOrderRepository) FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	base := r.db.DB.WithContext(ctx).Model(&trade.Order{}).Scopes(tenant.FarmScope(farmID))
	if filter.Search != "" {
		base = base.Where("order_number ILIKE ? OR counterparty_name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	query, total, err := countThenPage(base, filter)
	if err != nil {
		return nil, err
	}

	var orders []trade.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// CreateAtomic writes the order header and all line items in one
// transaction. Referenced rows are re-checked under lock inside the
// transaction: the counterparty role and every referenced catalog item
// must still exist in the order's farm at commit time. Any mid-write
// disappearance or duplicate order number rolls the whole write back and
// reports a conflict; no partial order is ever observable.
func (r *GormOrderRepository) CreateAtomic(ctx context.Context, order *trade.Order) error {
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var roleCount int64
		if err := tx.Table("party_roles").
			Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ?", order.PartyRoleID).
			Scopes(tenant.FarmScope(order.FarmID)).
			Count(&roleCount).Error; err != nil {
			return err
		}
		if roleCount == 0 {
			return shared.ErrConflict
		}

		itemIDs := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			if item.CatalogItemID != nil {
				itemIDs = append(itemIDs, *item.CatalogItemID)
			}
		}
		if len(itemIDs) > 0 {
			var catalogCount int64
			if err := tx.Table("catalog_items").
				Clauses(clause.Locking{Strength: "SHARE"}).
				Where("id IN ?", itemIDs).
				Scopes(tenant.FarmScope(order.FarmID)).
				Count(&catalogCount).Error; err != nil {
				return err
			}
			if catalogCount != int64(len(uniqueIDs(itemIDs))) {
				return shared.ErrConflict
			}
		}

		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) > 0 {
			if err := tx.Create(&order.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Save updates an existing order with optimistic locking on Version
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&trade.Order{}).
			Where("id = ? AND farm_id = ? AND version = ?", order.ID, order.FarmID, order.Version-1).
			Select("*").Omit("Items", "id", "farm_id", "created_at").
			Updates(order)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		for i := range order.Items {
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
