package identity

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MembershipService manages which users may act in a farm. Grants and
// revocations always target the caller's authorized farm; the farm ID is
// never taken from request data.
type MembershipService struct {
	membershipRepo identity.MembershipRepository
	userRepo       identity.UserRepository
	logger         *zap.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	membershipRepo identity.MembershipRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// Grant creates an active membership for a user in the authorized farm.
// The application-level duplicate check is advisory; the partial unique
// index on (farm_id, user_id) WHERE active is what actually closes the
// race, and an index hit surfaces as CONFLICT.
func (s *MembershipService) Grant(ctx context.Context, authz *Authorization, input GrantMembershipInput) (*MembershipInfo, error) {
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if existing, err := s.membershipRepo.FindActiveByFarmAndUser(ctx, authz.FarmID, input.UserID); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User already has an active membership in this farm")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	membership, err := identity.NewMembership(authz.FarmID, input.UserID, input.Role)
	if err != nil {
		return nil, err
	}

	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		s.logger.Warn("Membership grant failed",
			zap.String("farm_id", authz.FarmID.String()),
			zap.String("user_id", input.UserID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Membership granted",
		zap.String("farm_id", authz.FarmID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("role", input.Role.String()))

	info := toMembershipInfo(membership)
	return &info, nil
}

// Revoke deactivates a user's active membership in the authorized farm
func (s *MembershipService) Revoke(ctx context.Context, authz *Authorization, userID uuid.UUID) error {
	membership, err := s.membershipRepo.FindActiveByFarmAndUser(ctx, authz.FarmID, userID)
	if err != nil {
		return err
	}

	if err := membership.Deactivate(); err != nil {
		return err
	}

	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return err
	}

	s.logger.Info("Membership revoked",
		zap.String("farm_id", authz.FarmID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// ChangeRole updates the role on a user's active membership
func (s *MembershipService) ChangeRole(ctx context.Context, authz *Authorization, userID uuid.UUID, role identity.MembershipRole) (*MembershipInfo, error) {
	membership, err := s.membershipRepo.FindActiveByFarmAndUser(ctx, authz.FarmID, userID)
	if err != nil {
		return nil, err
	}

	if err := membership.ChangeRole(role); err != nil {
		return nil, err
	}

	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return nil, err
	}

	info := toMembershipInfo(membership)
	return &info, nil
}

// ListForFarm lists memberships in the authorized farm
func (s *MembershipService) ListForFarm(ctx context.Context, authz *Authorization, filter shared.Filter) ([]MembershipInfo, error) {
	memberships, err := s.membershipRepo.FindAllForFarm(ctx, authz.FarmID, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]MembershipInfo, 0, len(memberships))
	for i := range memberships {
		infos = append(infos, toMembershipInfo(&memberships[i]))
	}
	return infos, nil
}
