package persistence

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/trade"
	"github.com/farmops/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogItemRepository implements trade.CatalogItemRepository using GORM
type GormCatalogItemRepository struct {
	db *gorm.DB
}

// NewGormCatalogItemRepository creates a new GormCatalogItemRepository
func NewGormCatalogItemRepository(db *gorm.DB) *GormCatalogItemRepository {
	return &GormCatalogItemRepository{db: db}
}

// FindByIDForFarm finds a catalog item by ID within a farm
func (r *GormCatalogItemRepository) FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*trade.CatalogItem, error) {
	var item trade.CatalogItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Scopes(tenant.FarmScope(farmID)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDsForFarm finds the catalog items among ids that belong to the
// farm. Missing or foreign rows are simply absent from the result; the
// caller decides what absence means.
func (r *GormCatalogItemRepository) FindByIDsForFarm(ctx context.Context, ids []uuid.UUID, farmID uuid.UUID) ([]trade.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []trade.CatalogItem
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Scopes(tenant.FarmScope(farmID)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForFarm finds all catalog items for a farm with pagination
func (r *GormCatalogItemRepository) FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) (*shared.Paginated[trade.CatalogItem], error) {
	base := r.db.WithContext(ctx).Model(&trade.CatalogItem{}).Scopes(tenant.FarmScope(farmID))
	if filter.Search != "" {
		base = base.Where("code ILIKE ? OR name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	query, total, err := countThenPage(base, filter)
	if err != nil {
		return nil, err
	}

	var items []trade.CatalogItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save creates or updates a catalog item
func (r *GormCatalogItemRepository) Save(ctx context.Context, item *trade.CatalogItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ trade.CatalogItemRepository = (*GormCatalogItemRepository)(nil)
