package trade

import (
	"context"

	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/farmops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService manages the farm's sellable catalog
type CatalogService struct {
	catalogRepo trade.CatalogItemRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo trade.CatalogItemRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo, logger: logger}
}

// Create registers a new catalog item in the caller's farm. Codes are
// unique per farm; a duplicate answers ALREADY_EXISTS.
func (s *CatalogService) Create(ctx context.Context, authz *appidentity.Authorization, input CreateCatalogItemInput) (*CatalogItemView, error) {
	currency := valueobject.DefaultCurrency
	if input.Currency != "" {
		currency = valueobject.Currency(input.Currency)
	}
	price, err := valueobject.NewMoney(input.ListPrice, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", err.Error())
	}

	item, err := trade.NewCatalogItem(authz.FarmID, input.Code, input.Name, input.Unit, price)
	if err != nil {
		return nil, err
	}
	item.CreatedBy = &authz.UserID

	if err := s.catalogRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Catalog item created",
		zap.String("item_id", item.ID.String()),
		zap.String("farm_id", authz.FarmID.String()),
		zap.String("code", item.Code))

	view := toCatalogItemView(item)
	return &view, nil
}

// Get loads one catalog item in the caller's farm
func (s *CatalogService) Get(ctx context.Context, authz *appidentity.Authorization, itemID uuid.UUID) (*CatalogItemView, error) {
	item, err := s.catalogRepo.FindByIDForFarm(ctx, itemID, authz.FarmID)
	if err != nil {
		return nil, err
	}
	view := toCatalogItemView(item)
	return &view, nil
}

// List pages through the farm's catalog
func (s *CatalogService) List(ctx context.Context, authz *appidentity.Authorization, filter shared.Filter) (*shared.Paginated[CatalogItemView], error) {
	page, err := s.catalogRepo.FindAllForFarm(ctx, authz.FarmID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]CatalogItemView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toCatalogItemView(&page.Items[i]))
	}

	result := shared.NewPaginated(views, page.Total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdatePrice replaces the list price of a catalog item
func (s *CatalogService) UpdatePrice(ctx context.Context, authz *appidentity.Authorization, itemID uuid.UUID, price valueobject.Money) (*CatalogItemView, error) {
	item, err := s.catalogRepo.FindByIDForFarm(ctx, itemID, authz.FarmID)
	if err != nil {
		return nil, err
	}

	if err := item.UpdatePrice(price); err != nil {
		return nil, err
	}

	if err := s.catalogRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	view := toCatalogItemView(item)
	return &view, nil
}

// SetActive activates or deactivates a catalog item
func (s *CatalogService) SetActive(ctx context.Context, authz *appidentity.Authorization, itemID uuid.UUID, active bool) (*CatalogItemView, error) {
	item, err := s.catalogRepo.FindByIDForFarm(ctx, itemID, authz.FarmID)
	if err != nil {
		return nil, err
	}

	if active {
		err = item.Activate()
	} else {
		err = item.Deactivate()
	}
	if err != nil {
		return nil, err
	}

	if err := s.catalogRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	view := toCatalogItemView(item)
	return &view, nil
}
