package identity

import (
	"context"
	"errors"
	"time"

	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const authorizeTimeout = 5 * time.Second

// AccessGuard decides, per request, whether a caller may act within a
// farm. The credential only proves who the caller is; the tenant selector
// names the farm, and the membership row read fresh from storage is the
// sole source of authorization. Nothing is cached between requests, so a
// revoked membership or suspended farm takes effect on the next call.
type AccessGuard struct {
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	userRepo       identity.UserRepository
	farmRepo       identity.FarmRepository
	membershipRepo identity.MembershipRepository
	logger         *zap.Logger
}

// NewAccessGuard creates a new access guard
func NewAccessGuard(
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	userRepo identity.UserRepository,
	farmRepo identity.FarmRepository,
	membershipRepo identity.MembershipRepository,
	logger *zap.Logger,
) *AccessGuard {
	return &AccessGuard{
		jwtService:     jwtService,
		blacklist:      blacklist,
		userRepo:       userRepo,
		farmRepo:       farmRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

// Authorize validates the credential, resolves the tenant selector, and
// checks the caller's membership in that farm. The three failure kinds
// are distinct: UNAUTHENTICATED (bad credential), TENANT_REQUIRED
// (missing or malformed selector), FORBIDDEN (no active membership, or
// the farm is suspended). Storage failures never degrade into FORBIDDEN;
// they surface as INTERNAL so a transient outage cannot read as a
// revocation.
func (g *AccessGuard) Authorize(ctx context.Context, input AuthorizeInput) (*Authorization, error) {
	// Lookups are bounded so a stalled store answers INTERNAL instead of
	// hanging the request.
	ctx, cancel := context.WithTimeout(ctx, authorizeTimeout)
	defer cancel()

	claims, err := g.jwtService.ValidateAccessToken(input.Credential)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}

	if g.blacklist != nil && claims.ID != "" {
		revoked, err := g.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			g.logger.Error("Token blacklist check failed", zap.Error(err))
			return nil, shared.ErrInternal
		}
		if revoked {
			return nil, shared.ErrUnauthenticated
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}

	if input.TenantSelector == "" {
		return nil, shared.ErrTenantRequired
	}
	farmID, err := uuid.Parse(input.TenantSelector)
	if err != nil || farmID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	user, err := g.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		g.logger.Error("User lookup failed during authorization", zap.Error(err))
		return nil, shared.ErrInternal
	}
	if !user.IsActive() {
		return nil, shared.ErrUnauthenticated
	}

	membership, err := g.membershipRepo.FindActiveByFarmAndUser(ctx, farmID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			g.logger.Debug("No active membership",
				zap.String("user_id", userID.String()),
				zap.String("farm_id", farmID.String()))
			return nil, shared.ErrForbidden
		}
		g.logger.Error("Membership lookup failed during authorization", zap.Error(err))
		return nil, shared.ErrInternal
	}

	farm, err := g.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrForbidden
		}
		g.logger.Error("Farm lookup failed during authorization", zap.Error(err))
		return nil, shared.ErrInternal
	}
	if !farm.IsActive() {
		return nil, shared.ErrForbidden
	}

	return &Authorization{
		UserID:       userID,
		FarmID:       farmID,
		MembershipID: membership.ID,
		Role:         membership.Role,
	}, nil
}

// RequireRole checks that an authorization carries at least the required
// role. Holding a valid membership with too low a role is FORBIDDEN, the
// same answer as holding none.
func (g *AccessGuard) RequireRole(authz *Authorization, required identity.MembershipRole) error {
	if authz == nil || !authz.Role.AtLeast(required) {
		return shared.ErrForbidden
	}
	return nil
}
