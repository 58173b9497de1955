package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFarmRepository implements identity.FarmRepository using GORM
type GormFarmRepository struct {
	db *gorm.DB
}

// NewGormFarmRepository creates a new GormFarmRepository
func NewGormFarmRepository(db *gorm.DB) *GormFarmRepository {
	return &GormFarmRepository{db: db}
}

// FindByID finds a farm by its ID
func (r *GormFarmRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Farm, error) {
	var farm identity.Farm
	if err := r.db.WithContext(ctx).First(&farm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// FindByCode finds a farm by its code
func (r *GormFarmRepository) FindByCode(ctx context.Context, code string) (*identity.Farm, error) {
	var farm identity.Farm
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// Save creates or updates a farm
func (r *GormFarmRepository) Save(ctx context.Context, farm *identity.Farm) error {
	if err := r.db.WithContext(ctx).Save(farm).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ identity.FarmRepository = (*GormFarmRepository)(nil)
