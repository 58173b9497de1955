package party

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyKind distinguishes people from organizations
type PartyKind string

const (
	PartyKindOrganization PartyKind = "organization"
	PartyKindIndividual   PartyKind = "individual"
)

// Party represents one real-world actor, independent of any farm.
// A party never carries a farm ID itself; farm scoping lives entirely on
// the roles it holds, so the same actor can be a customer of one farm and
// a supplier of another without duplicating identity data.
//
// Parties are never hard-deleted while any role references them; Archive
// is the only terminal operation.
type Party struct {
	shared.BaseAggregateRoot
	DisplayName string    `gorm:"type:varchar(200);not null"`
	LegalName   string    `gorm:"type:varchar(200)"`
	Kind        PartyKind `gorm:"type:varchar(20);not null"`
	ArchivedAt  *time.Time

	Roles    []PartyRole `gorm:"foreignKey:PartyID"`
	Contacts []Contact   `gorm:"foreignKey:PartyID"`
}

// TableName returns the table name for GORM
func (Party) TableName() string {
	return "parties"
}

// NewParty creates a new party with required fields
func NewParty(displayName, legalName string, kind PartyKind) (*Party, error) {
	if err := validatePartyName(displayName); err != nil {
		return nil, err
	}
	if legalName != "" && len(legalName) > 200 {
		return nil, shared.NewDomainError("INVALID_LEGAL_NAME", "Legal name cannot exceed 200 characters")
	}
	if err := validatePartyKind(kind); err != nil {
		return nil, err
	}

	return &Party{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DisplayName:       displayName,
		LegalName:         legalName,
		Kind:              kind,
		Roles:             make([]PartyRole, 0),
		Contacts:          make([]Contact, 0),
	}, nil
}

// Update updates the party's display attributes
func (p *Party) Update(displayName, legalName string) error {
	if err := validatePartyName(displayName); err != nil {
		return err
	}
	if legalName != "" && len(legalName) > 200 {
		return shared.NewDomainError("INVALID_LEGAL_NAME", "Legal name cannot exceed 200 characters")
	}

	p.DisplayName = displayName
	p.LegalName = legalName
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// AddRole attaches a farm-scoped role to the party. The same party may
// hold at most one role per (farm, type), and the two customer types are
// mutually exclusive within one farm.
func (p *Party) AddRole(farmID uuid.UUID, roleType RoleType, metadata RoleMetadata) (*PartyRole, error) {
	if p.ArchivedAt != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add a role to an archived party")
	}

	for i := range p.Roles {
		existing := &p.Roles[i]
		if existing.FarmID != farmID {
			continue
		}
		if existing.Type == roleType {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Party already holds this role in this farm")
		}
		if existing.Type.ConflictsWith(roleType) {
			return nil, shared.ErrDuplicateActor
		}
	}

	role, err := NewPartyRole(p.ID, farmID, roleType, metadata)
	if err != nil {
		return nil, err
	}

	p.Roles = append(p.Roles, *role)
	p.UpdatedAt = time.Now()

	return role, nil
}

// RolesForFarm returns only the roles scoped to the given farm
func (p *Party) RolesForFarm(farmID uuid.UUID) []PartyRole {
	roles := make([]PartyRole, 0, len(p.Roles))
	for _, r := range p.Roles {
		if r.FarmID == farmID {
			roles = append(roles, r)
		}
	}
	return roles
}

// RoleForFarmAndType returns the role of the given type in the given farm, if any
func (p *Party) RoleForFarmAndType(farmID uuid.UUID, roleType RoleType) *PartyRole {
	for i := range p.Roles {
		if p.Roles[i].FarmID == farmID && p.Roles[i].Type == roleType {
			return &p.Roles[i]
		}
	}
	return nil
}

// AddContact attaches a typed contact channel. If the new contact is
// flagged primary, any existing primary of the same channel is demoted so
// the at-most-one-primary invariant holds inside the aggregate.
func (p *Party) AddContact(channel ContactChannel, label, value string, primary bool) (*Contact, error) {
	if p.ArchivedAt != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add a contact to an archived party")
	}

	contact, err := NewContact(p.ID, channel, label, value, primary)
	if err != nil {
		return nil, err
	}

	if primary {
		for i := range p.Contacts {
			if p.Contacts[i].Channel == channel {
				p.Contacts[i].demote()
			}
		}
	}

	p.Contacts = append(p.Contacts, *contact)
	p.UpdatedAt = time.Now()

	return contact, nil
}

// SetPrimaryContact promotes the given contact to primary for its channel,
// demoting any sibling of the same channel. Returns NotFound if the
// contact does not belong to this party.
func (p *Party) SetPrimaryContact(contactID uuid.UUID) error {
	var target *Contact
	for i := range p.Contacts {
		if p.Contacts[i].ID == contactID {
			target = &p.Contacts[i]
			break
		}
	}
	if target == nil {
		return shared.ErrNotFound
	}

	for i := range p.Contacts {
		if p.Contacts[i].Channel == target.Channel && p.Contacts[i].ID != contactID {
			p.Contacts[i].demote()
		}
	}
	target.promote()
	p.UpdatedAt = time.Now()

	return nil
}

// PrimaryContact returns the primary contact for a channel, if any
func (p *Party) PrimaryContact(channel ContactChannel) *Contact {
	for i := range p.Contacts {
		if p.Contacts[i].Channel == channel && p.Contacts[i].IsPrimary {
			return &p.Contacts[i]
		}
	}
	return nil
}

// PrimaryEmail returns the primary email value, or "" when absent
func (p *Party) PrimaryEmail() string {
	if c := p.PrimaryContact(ContactChannelEmail); c != nil {
		return c.Value
	}
	return ""
}

// Archive soft-deletes the party. Rejected while any role still
// references it.
func (p *Party) Archive() error {
	if p.ArchivedAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Party is already archived")
	}
	if len(p.Roles) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot archive a party that still holds roles")
	}

	now := time.Now()
	p.ArchivedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// IsArchived returns true if the party has been archived
func (p *Party) IsArchived() bool {
	return p.ArchivedAt != nil
}

func validatePartyName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Party display name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Party display name cannot exceed 200 characters")
	}
	return nil
}

func validatePartyKind(kind PartyKind) error {
	switch kind {
	case PartyKindOrganization, PartyKindIndividual:
		return nil
	default:
		return shared.NewDomainError("INVALID_KIND", "Party kind must be 'organization' or 'individual'")
	}
}
