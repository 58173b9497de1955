package identity

import (
	"context"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
}

// FarmRepository defines persistence operations for farms
type FarmRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Farm, error)
	FindByCode(ctx context.Context, code string) (*Farm, error)
	Save(ctx context.Context, farm *Farm) error
}

// MembershipRepository defines persistence operations for memberships.
// FindActiveByFarmAndUser is the authorization lookup; implementations
// must read fresh (no caching) so that a revocation is visible on the
// very next request.
type MembershipRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Membership, error)
	FindActiveByFarmAndUser(ctx context.Context, farmID, userID uuid.UUID) (*Membership, error)
	FindAllForFarm(ctx context.Context, farmID uuid.UUID, filter shared.Filter) ([]Membership, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	Save(ctx context.Context, membership *Membership) error
}
