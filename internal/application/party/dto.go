package party

import (
	"time"

	"github.com/farmops/backend/internal/domain/party"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactInput describes one contact channel entry on a create request
type ContactInput struct {
	Channel party.ContactChannel `json:"channel" binding:"required"`
	Label   string               `json:"label"`
	Value   string               `json:"value" binding:"required"`
	Primary bool                 `json:"primary"`
}

// RoleInput describes the farm-scoped role to attach
type RoleInput struct {
	Type     party.RoleType     `json:"type" binding:"required"`
	Metadata party.RoleMetadata `json:"metadata"`
}

// CreatePartyInput contains everything needed to register a new actor in
// the caller's farm: identity data, the initial role, and contacts
type CreatePartyInput struct {
	DisplayName string          `json:"display_name" binding:"required"`
	LegalName   string          `json:"legal_name"`
	Kind        party.PartyKind `json:"kind" binding:"required"`
	Role        RoleInput       `json:"role" binding:"required"`
	Contacts    []ContactInput  `json:"contacts"`
}

// RoleView is the read view of one farm-scoped role
type RoleView struct {
	ID       uuid.UUID          `json:"id"`
	Type     party.RoleType     `json:"type"`
	Metadata party.RoleMetadata `json:"metadata"`
}

// ContactView is the read view of one contact entry
type ContactView struct {
	ID      uuid.UUID            `json:"id"`
	Channel party.ContactChannel `json:"channel"`
	Label   string               `json:"label,omitempty"`
	Value   string               `json:"value"`
	Primary bool                 `json:"primary"`
}

// PartyView is the read view of a party restricted to the caller's farm:
// only roles scoped to that farm appear
type PartyView struct {
	ID          uuid.UUID       `json:"id"`
	DisplayName string          `json:"display_name"`
	LegalName   string          `json:"legal_name,omitempty"`
	Kind        party.PartyKind `json:"kind"`
	Archived    bool            `json:"archived"`
	Roles       []RoleView      `json:"roles"`
	Contacts    []ContactView   `json:"contacts"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LegacyCustomerView is the flat customer record older integrations
// expect: one row per customer role, with the party's identity and
// primary contacts folded in. It is derived on read and never stored.
type LegacyCustomerView struct {
	CustomerID       uuid.UUID       `json:"customer_id"`
	PartyID          uuid.UUID       `json:"party_id"`
	Name             string          `json:"name"`
	LegalName        string          `json:"legal_name,omitempty"`
	Type             party.RoleType  `json:"type"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Address          string          `json:"address,omitempty"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toPartyView(p *party.Party, farmID uuid.UUID) PartyView {
	roles := p.RolesForFarm(farmID)
	roleViews := make([]RoleView, 0, len(roles))
	for _, r := range roles {
		roleViews = append(roleViews, RoleView{ID: r.ID, Type: r.Type, Metadata: r.Metadata})
	}

	contactViews := make([]ContactView, 0, len(p.Contacts))
	for _, c := range p.Contacts {
		contactViews = append(contactViews, ContactView{
			ID:      c.ID,
			Channel: c.Channel,
			Label:   c.Label,
			Value:   c.Value,
			Primary: c.IsPrimary,
		})
	}

	return PartyView{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		LegalName:   p.LegalName,
		Kind:        p.Kind,
		Archived:    p.IsArchived(),
		Roles:       roleViews,
		Contacts:    contactViews,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toLegacyCustomerView(p *party.Party, role *party.PartyRole) LegacyCustomerView {
	view := LegacyCustomerView{
		CustomerID:       role.ID,
		PartyID:          p.ID,
		Name:             p.DisplayName,
		LegalName:        p.LegalName,
		Type:             role.Type,
		PaymentTermsDays: role.Metadata.PaymentTermsDays,
		CreditLimit:      role.Metadata.CreditLimit,
		CreatedAt:        role.CreatedAt,
	}
	if c := p.PrimaryContact(party.ContactChannelEmail); c != nil {
		view.Email = c.Value
	}
	if c := p.PrimaryContact(party.ContactChannelPhone); c != nil {
		view.Phone = c.Value
	}
	if c := p.PrimaryContact(party.ContactChannelAddress); c != nil {
		view.Address = c.Value
	}
	return view
}
