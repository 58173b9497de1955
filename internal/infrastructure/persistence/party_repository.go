package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartyRepository implements party.Repository using GORM. Save
// persists the whole aggregate in one transaction so a party is never
// observable without its roles and contacts; the transaction runs under
// the Database wrapper's statement timeout.
type GormPartyRepository struct {
	db *Database
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *Database) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party with its roles and contacts
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	var p party.Party
	if err := r.db.DB.WithContext(ctx).
		Preload("Roles").
		Preload("Contacts").
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByRoleID finds the party holding the given role
func (r *GormPartyRepository) FindByRoleID(ctx context.Context, roleID uuid.UUID) (*party.Party, error) {
	var role party.PartyRole
	if err := r.db.DB.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, role.PartyID)
}

// FindByFarmAndRoleType lists parties holding a role of the given type in
// the given farm. The farm filter is part of the SQL, never applied by
// the caller, and the preloads are restricted to that farm's roles so a
// response cannot carry another farm's metadata.
func (r *GormPartyRepository) FindByFarmAndRoleType(ctx context.Context, farmID uuid.UUID, roleType party.RoleType, filter shared.Filter) (*shared.Paginated[party.Party], error) {
	base := r.db.DB.WithContext(ctx).Model(&party.Party{}).
		Joins("JOIN party_roles ON party_roles.party_id = parties.id").
		Where("party_roles.farm_id = ? AND party_roles.type = ?", farmID, roleType).
		Where("parties.archived_at IS NULL")

	if filter.Search != "" {
		base = base.Where("parties.display_name ILIKE ?", "%"+filter.Search+"%")
	}

	query, total, err := countThenPage(base, filter)
	if err != nil {
		return nil, err
	}

	var parties []party.Party
	if err := query.
		Preload("Roles", "farm_id = ?", farmID).
		Preload("Contacts").
		Find(&parties).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(parties, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindByFarmAndPrimaryEmail looks up parties whose primary email contact
// matches, restricted to parties holding any role in the given farm
func (r *GormPartyRepository) FindByFarmAndPrimaryEmail(ctx context.Context, farmID uuid.UUID, email string) ([]party.Party, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	var ids []uuid.UUID
	if err := r.db.DB.WithContext(ctx).Model(&party.Contact{}).
		Distinct("contacts.party_id").
		Joins("JOIN party_roles ON party_roles.party_id = contacts.party_id").
		Where("contacts.channel = ? AND contacts.is_primary AND lower(contacts.value) = ?", party.ContactChannelEmail, email).
		Where("party_roles.farm_id = ?", farmID).
		Pluck("contacts.party_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var parties []party.Party
	if err := r.db.DB.WithContext(ctx).
		Preload("Roles", "farm_id = ?", farmID).
		Preload("Contacts").
		Where("id IN ?", ids).
		Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// Save persists the party aggregate with all roles and contacts in one
// transaction. Unique-index violations (duplicate role per farm, second
// primary contact per channel) surface as a conflict.
//
// Non-primary contacts are written before primary ones: a primary swap
// demotes the old row and promotes the new one in the same aggregate,
// and promoting first would trip the one-primary-per-channel index while
// the old row still holds the flag.
func (r *GormPartyRepository) Save(ctx context.Context, p *party.Party) error {
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Roles", "Contacts").Save(p).Error; err != nil {
			return err
		}
		for i := range p.Roles {
			if err := tx.Save(&p.Roles[i]).Error; err != nil {
				return err
			}
		}
		for i := range p.Contacts {
			if p.Contacts[i].IsPrimary {
				continue
			}
			if err := tx.Save(&p.Contacts[i]).Error; err != nil {
				return err
			}
		}
		for i := range p.Contacts {
			if !p.Contacts[i].IsPrimary {
				continue
			}
			if err := tx.Save(&p.Contacts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

var _ party.Repository = (*GormPartyRepository)(nil)

// GormPartyRoleRepository implements party.RoleRepository using GORM
type GormPartyRoleRepository struct {
	db *gorm.DB
}

// NewGormPartyRoleRepository creates a new GormPartyRoleRepository
func NewGormPartyRoleRepository(db *gorm.DB) *GormPartyRoleRepository {
	return &GormPartyRoleRepository{db: db}
}

// FindByID finds a role by its ID
func (r *GormPartyRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.PartyRole, error) {
	var role party.PartyRole
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindByIDForFarm finds a role by ID within a farm. A role belonging to
// another farm reports NotFound, indistinguishable from a missing row.
func (r *GormPartyRoleRepository) FindByIDForFarm(ctx context.Context, id, farmID uuid.UUID) (*party.PartyRole, error) {
	var role party.PartyRole
	if err := r.db.WithContext(ctx).
		Where("id = ? AND farm_id = ?", id, farmID).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

var _ party.RoleRepository = (*GormPartyRoleRepository)(nil)
