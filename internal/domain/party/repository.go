package party

import (
	"context"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for parties and their roles
// and contacts. Save persists the whole aggregate (party, roles,
// contacts) in one transaction.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)
	FindByRoleID(ctx context.Context, roleID uuid.UUID) (*Party, error)

	// FindByFarmAndRoleType lists parties holding a role of the given
	// type in the given farm. The farm filter is applied server-side.
	FindByFarmAndRoleType(ctx context.Context, farmID uuid.UUID, roleType RoleType, filter shared.Filter) (*shared.Paginated[Party], error)

	// FindByFarmAndPrimaryEmail looks up parties whose primary email
	// contact matches, restricted to parties holding any role in the
	// given farm. Used for duplicate-actor detection.
	FindByFarmAndPrimaryEmail(ctx context.Context, farmID uuid.UUID, email string) ([]Party, error)

	Save(ctx context.Context, party *Party) error
}

// RoleRepository exposes direct role lookups for callers that hold a
// role ID but do not need the full party aggregate.
type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PartyRole, error)
	FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*PartyRole, error)
}
