package party

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoleType classifies how a party relates to one farm
type RoleType string

const (
	RoleTypeCustomerBusiness   RoleType = "customer_business"
	RoleTypeCustomerIndividual RoleType = "customer_individual"
	RoleTypeSupplier           RoleType = "supplier"
)

// IsValid checks if the role type is known
func (t RoleType) IsValid() bool {
	switch t {
	case RoleTypeCustomerBusiness, RoleTypeCustomerIndividual, RoleTypeSupplier:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role type
func (t RoleType) String() string {
	return string(t)
}

// IsCustomer returns true for either customer variant
func (t RoleType) IsCustomer() bool {
	return t == RoleTypeCustomerBusiness || t == RoleTypeCustomerIndividual
}

// ConflictsWith returns true when two role types cannot coexist for the
// same party within one farm. The two customer variants are mutually
// exclusive; supplier is independent of both.
func (t RoleType) ConflictsWith(other RoleType) bool {
	return t.IsCustomer() && other.IsCustomer() && t != other
}

// RoleMetadata carries the per-role commercial attributes. It is a typed
// struct in the domain; persistence stores it as a jsonb column.
type RoleMetadata struct {
	PaymentTermsDays    int             `json:"payment_terms_days,omitempty"`
	CreditLimit         decimal.Decimal `json:"credit_limit,omitempty"`
	PreferredCategories []string        `json:"preferred_categories,omitempty"`
	DeliveryNotes       string          `json:"delivery_notes,omitempty"`
}

func (m RoleMetadata) validate() error {
	if m.PaymentTermsDays < 0 {
		return shared.NewDomainError("INVALID_METADATA", "Payment terms cannot be negative")
	}
	if m.PaymentTermsDays > 365 {
		return shared.NewDomainError("INVALID_METADATA", "Payment terms cannot exceed 365 days")
	}
	if m.CreditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_METADATA", "Credit limit cannot be negative")
	}
	if len(m.DeliveryNotes) > 1000 {
		return shared.NewDomainError("INVALID_METADATA", "Delivery notes cannot exceed 1000 characters")
	}
	return nil
}

// PartyRole binds a party to one farm in one commercial capacity. This is
// the entity orders reference as their counterparty; the party itself is
// never referenced directly from trade data.
type PartyRole struct {
	shared.BaseAggregateRoot
	PartyID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	FarmID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type     RoleType     `gorm:"type:varchar(30);not null"`
	Metadata RoleMetadata `gorm:"serializer:json;type:jsonb"`
}

// TableName returns the table name for GORM
func (PartyRole) TableName() string {
	return "party_roles"
}

// NewPartyRole creates a new farm-scoped role for a party
func NewPartyRole(partyID, farmID uuid.UUID, roleType RoleType, metadata RoleMetadata) (*PartyRole, error) {
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if farmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARM", "Farm ID cannot be empty")
	}
	if !roleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE_TYPE", "Unknown role type")
	}
	if err := metadata.validate(); err != nil {
		return nil, err
	}

	return &PartyRole{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartyID:           partyID,
		FarmID:            farmID,
		Type:              roleType,
		Metadata:          metadata,
	}, nil
}

// UpdateMetadata replaces the role's commercial attributes
func (r *PartyRole) UpdateMetadata(metadata RoleMetadata) error {
	if err := metadata.validate(); err != nil {
		return err
	}

	r.Metadata = metadata
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}
