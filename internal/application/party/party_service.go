package party

import (
	"context"
	"errors"

	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages parties and their farm-scoped roles and contacts.
// Every operation takes the farm from the caller's authorization; a
// party visible through one farm's roles is invisible through another's,
// and cross-farm lookups answer NOT_FOUND.
type Service struct {
	partyRepo party.Repository
	logger    *zap.Logger
}

// NewService creates a new party service
func NewService(partyRepo party.Repository, logger *zap.Logger) *Service {
	return &Service{
		partyRepo: partyRepo,
		logger:    logger,
	}
}

// Create registers a new party with its initial role and contacts in one
// atomic write. If the party's primary email already belongs to an actor
// holding a conflicting customer role in the same farm, the create is
// rejected as DUPLICATE_ACTOR before anything is written. Two concurrent
// creates that both pass the check are separated by the storage layer's
// unique index and the loser sees CONFLICT.
func (s *Service) Create(ctx context.Context, authz *appidentity.Authorization, input CreatePartyInput) (*PartyView, error) {
	p, err := party.NewParty(input.DisplayName, input.LegalName, input.Kind)
	if err != nil {
		return nil, err
	}

	for _, c := range input.Contacts {
		if _, err := p.AddContact(c.Channel, c.Label, c.Value, c.Primary); err != nil {
			return nil, err
		}
	}

	if email := p.PrimaryEmail(); email != "" {
		if err := s.checkDuplicateActor(ctx, authz.FarmID, email, input.Role.Type, uuid.Nil); err != nil {
			return nil, err
		}
	}

	if _, err := p.AddRole(authz.FarmID, input.Role.Type, input.Role.Metadata); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		s.logger.Warn("Party create failed",
			zap.String("farm_id", authz.FarmID.String()),
			zap.String("display_name", input.DisplayName),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Party created",
		zap.String("party_id", p.ID.String()),
		zap.String("farm_id", authz.FarmID.String()),
		zap.String("role_type", input.Role.Type.String()))

	view := toPartyView(p, authz.FarmID)
	return &view, nil
}

// Get loads a party visible to the caller's farm. A party with no role
// in that farm answers NOT_FOUND, the same as a party that does not exist.
func (s *Service) Get(ctx context.Context, authz *appidentity.Authorization, partyID uuid.UUID) (*PartyView, error) {
	p, err := s.loadVisible(ctx, authz.FarmID, partyID)
	if err != nil {
		return nil, err
	}
	view := toPartyView(p, authz.FarmID)
	return &view, nil
}

// ListByRoleType lists the farm's parties holding the given role type
func (s *Service) ListByRoleType(ctx context.Context, authz *appidentity.Authorization, roleType party.RoleType, filter shared.Filter) (*shared.Paginated[PartyView], error) {
	if !roleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE_TYPE", "Unknown role type")
	}

	page, err := s.partyRepo.FindByFarmAndRoleType(ctx, authz.FarmID, roleType, filter)
	if err != nil {
		return nil, err
	}

	views := make([]PartyView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, toPartyView(&page.Items[i], authz.FarmID))
	}

	result := shared.NewPaginated(views, page.Total, filter.Page, filter.PageSize)
	return &result, nil
}

// AddRole attaches another farm-scoped role to an existing party. The
// same duplicate-actor rule applies as on create: the party's primary
// email must not collide with a conflicting customer role elsewhere in
// the farm.
func (s *Service) AddRole(ctx context.Context, authz *appidentity.Authorization, partyID uuid.UUID, input RoleInput) (*PartyView, error) {
	p, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, err
	}

	if email := p.PrimaryEmail(); email != "" {
		if err := s.checkDuplicateActor(ctx, authz.FarmID, email, input.Type, p.ID); err != nil {
			return nil, err
		}
	}

	if _, err := p.AddRole(authz.FarmID, input.Type, input.Metadata); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Role added to party",
		zap.String("party_id", p.ID.String()),
		zap.String("farm_id", authz.FarmID.String()),
		zap.String("role_type", input.Type.String()))

	view := toPartyView(p, authz.FarmID)
	return &view, nil
}

// UpdateRoleMetadata replaces the metadata on one of the party's roles
// in the caller's farm
func (s *Service) UpdateRoleMetadata(ctx context.Context, authz *appidentity.Authorization, partyID uuid.UUID, roleType party.RoleType, metadata party.RoleMetadata) (*PartyView, error) {
	p, err := s.loadVisible(ctx, authz.FarmID, partyID)
	if err != nil {
		return nil, err
	}

	role := p.RoleForFarmAndType(authz.FarmID, roleType)
	if role == nil {
		return nil, shared.ErrNotFound
	}
	if err := role.UpdateMetadata(metadata); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	view := toPartyView(p, authz.FarmID)
	return &view, nil
}

// AddContact attaches a contact entry to a party visible to the caller
func (s *Service) AddContact(ctx context.Context, authz *appidentity.Authorization, partyID uuid.UUID, input ContactInput) (*PartyView, error) {
	p, err := s.loadVisible(ctx, authz.FarmID, partyID)
	if err != nil {
		return nil, err
	}

	if _, err := p.AddContact(input.Channel, input.Label, input.Value, input.Primary); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	view := toPartyView(p, authz.FarmID)
	return &view, nil
}

// SetPrimaryContact promotes one of the party's contacts to primary for
// its channel. A contact ID belonging to another party answers NOT_FOUND.
func (s *Service) SetPrimaryContact(ctx context.Context, authz *appidentity.Authorization, partyID, contactID uuid.UUID) (*PartyView, error) {
	p, err := s.loadVisible(ctx, authz.FarmID, partyID)
	if err != nil {
		return nil, err
	}

	if err := p.SetPrimaryContact(contactID); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	view := toPartyView(p, authz.FarmID)
	return &view, nil
}

// Archive retires a party. Archiving is refused while the party still
// holds roles anywhere; callers detach roles first.
func (s *Service) Archive(ctx context.Context, authz *appidentity.Authorization, partyID uuid.UUID) error {
	p, err := s.loadVisible(ctx, authz.FarmID, partyID)
	if err != nil {
		return err
	}

	if err := p.Archive(); err != nil {
		return err
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return err
	}

	s.logger.Info("Party archived", zap.String("party_id", p.ID.String()))
	return nil
}

// ListLegacyCustomers produces the flat customer records older
// integrations consume, one per customer role in the caller's farm
func (s *Service) ListLegacyCustomers(ctx context.Context, authz *appidentity.Authorization, filter shared.Filter) (*shared.Paginated[LegacyCustomerView], error) {
	views := make([]LegacyCustomerView, 0)
	var total int64

	for _, roleType := range []party.RoleType{party.RoleTypeCustomerBusiness, party.RoleTypeCustomerIndividual} {
		page, err := s.partyRepo.FindByFarmAndRoleType(ctx, authz.FarmID, roleType, filter)
		if err != nil {
			return nil, err
		}
		total += page.Total
		for i := range page.Items {
			p := &page.Items[i]
			if role := p.RoleForFarmAndType(authz.FarmID, roleType); role != nil {
				views = append(views, toLegacyCustomerView(p, role))
			}
		}
	}

	result := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &result, nil
}

// loadVisible loads a party and verifies it holds at least one role in
// the farm. Parties without such a role answer NOT_FOUND so a caller
// cannot learn whether the ID exists in some other farm.
func (s *Service) loadVisible(ctx context.Context, farmID, partyID uuid.UUID) (*party.Party, error) {
	p, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if len(p.RolesForFarm(farmID)) == 0 {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

// checkDuplicateActor rejects a role attachment when another party with
// the same primary email already holds a conflicting customer role in
// the farm. selfID exempts the party being modified.
func (s *Service) checkDuplicateActor(ctx context.Context, farmID uuid.UUID, email string, roleType party.RoleType, selfID uuid.UUID) error {
	matches, err := s.partyRepo.FindByFarmAndPrimaryEmail(ctx, farmID, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	for i := range matches {
		existing := &matches[i]
		if existing.ID == selfID {
			continue
		}
		for _, r := range existing.RolesForFarm(farmID) {
			if r.Type == roleType || r.Type.ConflictsWith(roleType) {
				s.logger.Warn("Duplicate actor detected",
					zap.String("farm_id", farmID.String()),
					zap.String("existing_party_id", existing.ID.String()),
					zap.String("role_type", roleType.String()))
				return shared.ErrDuplicateActor
			}
		}
	}
	return nil
}
