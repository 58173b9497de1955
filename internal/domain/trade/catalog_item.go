package trade

import (
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CatalogItem is a sellable product or service a farm offers. Order
// items may reference one; referential checks require the item to belong
// to the same farm as the order.
type CatalogItem struct {
	shared.FarmAggregateRoot
	Code      string            `gorm:"type:varchar(50);not null;index:idx_catalog_farm_code"`
	Name      string            `gorm:"type:varchar(200);not null"`
	Unit      string            `gorm:"type:varchar(20);not null;default:'each'"`
	ListPrice valueobject.Money `gorm:"type:decimal(15,2)"`
	Active    bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// NewCatalogItem creates a new catalog item for a farm
func NewCatalogItem(farmID uuid.UUID, code, name, unit string, listPrice valueobject.Money) (*CatalogItem, error) {
	if farmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARM", "Farm ID cannot be empty")
	}
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Catalog item code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Catalog item code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Catalog item name cannot be empty")
	}
	if listPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	if unit == "" {
		unit = "each"
	}

	return &CatalogItem{
		FarmAggregateRoot: shared.NewFarmAggregateRoot(farmID),
		Code:              code,
		Name:              name,
		Unit:              unit,
		ListPrice:         listPrice,
		Active:            true,
	}, nil
}

// UpdatePrice changes the list price
func (c *CatalogItem) UpdatePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}

	c.ListPrice = price
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate removes the item from sale without deleting history
func (c *CatalogItem) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Catalog item is already inactive")
	}

	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate puts the item back on sale
func (c *CatalogItem) Activate() error {
	if c.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Catalog item is already active")
	}

	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
