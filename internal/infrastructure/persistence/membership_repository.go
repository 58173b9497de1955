package persistence

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMembershipRepository implements identity.MembershipRepository using
// GORM. A partial unique index on (farm_id, user_id) WHERE active closes
// the grant race; concurrent duplicate grants surface as a conflict.
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByID finds a membership by its ID
func (r *GormMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Membership, error) {
	var membership identity.Membership
	if err := r.db.WithContext(ctx).First(&membership, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// FindActiveByFarmAndUser finds the single active membership for a
// (farm, user) pair. Always reads the row fresh so a revocation is
// visible on the very next request.
func (r *GormMembershipRepository) FindActiveByFarmAndUser(ctx context.Context, farmID, userID uuid.UUID) (*identity.Membership, error) {
	var membership identity.Membership
	if err := r.db.WithContext(ctx).
		Where("farm_id = ? AND user_id = ? AND active = ?", farmID, userID, true).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// FindAllForFarm finds all memberships for a farm
func (r *GormMembershipRepository) FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) ([]identity.Membership, error) {
	var memberships []identity.Membership
	query := applyFilter(
		r.db.WithContext(ctx).Model(&identity.Membership{}).Where("farm_id = ?", farmID),
		filter,
	)
	if err := query.Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// FindAllForUser finds all memberships held by a user across farms
func (r *GormMembershipRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]identity.Membership, error) {
	var memberships []identity.Membership
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at desc").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// Save creates or updates a membership
func (r *GormMembershipRepository) Save(ctx context.Context, membership *identity.Membership) error {
	if err := r.db.WithContext(ctx).Save(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

var _ identity.MembershipRepository = (*GormMembershipRepository)(nil)
