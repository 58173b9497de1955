// Package tenant builds the farm partition predicate for GORM queries.
// Every domain row carries a mandatory farm_id column; repositories
// apply this scope instead of writing the filter inline, so the
// partition column name lives in exactly one place.
package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FarmScope restricts a query to rows of the given farm
func FarmScope(farmID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("farm_id = ?", farmID)
	}
}
