package party

import (
	"regexp"
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactChannel is the kind of contact point
type ContactChannel string

const (
	ContactChannelEmail   ContactChannel = "email"
	ContactChannelPhone   ContactChannel = "phone"
	ContactChannelAddress ContactChannel = "address"
)

// IsValid checks if the channel is known
func (c ContactChannel) IsValid() bool {
	switch c {
	case ContactChannelEmail, ContactChannelPhone, ContactChannelAddress:
		return true
	default:
		return false
	}
}

var (
	contactEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	contactPhoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{5,30}$`)
)

// Contact is one reachable point for a party. At most one contact per
// (party, channel) may be primary; the aggregate keeps the invariant in
// memory and a partial unique index keeps it under concurrency.
type Contact struct {
	shared.BaseEntity
	PartyID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Channel   ContactChannel `gorm:"type:varchar(20);not null"`
	Label     string         `gorm:"type:varchar(50)"`
	Value     string         `gorm:"type:varchar(500);not null"`
	IsPrimary bool           `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new contact point
func NewContact(partyID uuid.UUID, channel ContactChannel, label, value string, primary bool) (*Contact, error) {
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown contact channel")
	}
	if len(label) > 50 {
		return nil, shared.NewDomainError("INVALID_LABEL", "Contact label cannot exceed 50 characters")
	}

	value = strings.TrimSpace(value)
	if err := validateContactValue(channel, value); err != nil {
		return nil, err
	}
	if channel == ContactChannelEmail {
		value = strings.ToLower(value)
	}

	return &Contact{
		BaseEntity: shared.NewBaseEntity(),
		PartyID:    partyID,
		Channel:    channel,
		Label:      label,
		Value:      value,
		IsPrimary:  primary,
	}, nil
}

// UpdateValue replaces the contact value, re-validating for its channel
func (c *Contact) UpdateValue(value string) error {
	value = strings.TrimSpace(value)
	if err := validateContactValue(c.Channel, value); err != nil {
		return err
	}
	if c.Channel == ContactChannelEmail {
		value = strings.ToLower(value)
	}

	c.Value = value
	c.UpdatedAt = time.Now()

	return nil
}

func (c *Contact) promote() {
	c.IsPrimary = true
	c.UpdatedAt = time.Now()
}

func (c *Contact) demote() {
	if c.IsPrimary {
		c.IsPrimary = false
		c.UpdatedAt = time.Now()
	}
}

func validateContactValue(channel ContactChannel, value string) error {
	if value == "" {
		return shared.NewDomainError("INVALID_CONTACT", "Contact value cannot be empty")
	}
	switch channel {
	case ContactChannelEmail:
		if !contactEmailRegex.MatchString(value) {
			return shared.NewDomainError("INVALID_CONTACT", "Invalid email format")
		}
	case ContactChannelPhone:
		if !contactPhoneRegex.MatchString(value) {
			return shared.NewDomainError("INVALID_CONTACT", "Invalid phone number format")
		}
	case ContactChannelAddress:
		if len(value) > 500 {
			return shared.NewDomainError("INVALID_CONTACT", "Address cannot exceed 500 characters")
		}
	}
	return nil
}
