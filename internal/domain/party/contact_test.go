package party

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	partyID := uuid.New()

	tests := []struct {
		name    string
		channel ContactChannel
		value   string
		wantErr bool
	}{
		{"valid email", ContactChannelEmail, "orders@greenvalley.example", false},
		{"email normalized later", ContactChannelEmail, "Orders@GreenValley.Example", false},
		{"bad email", ContactChannelEmail, "not-an-email", true},
		{"valid phone", ContactChannelPhone, "+1 (555) 010-2345", false},
		{"bad phone", ContactChannelPhone, "call me maybe", true},
		{"valid address", ContactChannelAddress, "42 Orchard Rd, Salinas, CA", false},
		{"empty value", ContactChannelEmail, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContact(partyID, tt.channel, "work", tt.value, false)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, partyID, c.PartyID)
		})
	}

	t.Run("email is lowercased", func(t *testing.T) {
		c, err := NewContact(partyID, ContactChannelEmail, "", "Orders@Example.COM", true)
		require.NoError(t, err)
		assert.Equal(t, "orders@example.com", c.Value)
		assert.True(t, c.IsPrimary)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := NewContact(partyID, ContactChannel("fax"), "", "555", false)
		require.Error(t, err)
	})
}

func TestPartyPrimaryContact(t *testing.T) {
	newParty := func(t *testing.T) *Party {
		p, err := NewParty("Harvest Hub", "", PartyKindOrganization)
		require.NoError(t, err)
		return p
	}

	t.Run("first primary wins until replaced", func(t *testing.T) {
		p := newParty(t)
		first, err := p.AddContact(ContactChannelEmail, "main", "a@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, first.ID, p.PrimaryContact(ContactChannelEmail).ID)

		second, err := p.AddContact(ContactChannelEmail, "billing", "b@example.com", true)
		require.NoError(t, err)

		// the new primary demotes the old one
		primary := p.PrimaryContact(ContactChannelEmail)
		require.NotNil(t, primary)
		assert.Equal(t, second.ID, primary.ID)

		count := 0
		for _, c := range p.Contacts {
			if c.Channel == ContactChannelEmail && c.IsPrimary {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("primaries are independent per channel", func(t *testing.T) {
		p := newParty(t)
		_, err := p.AddContact(ContactChannelEmail, "", "a@example.com", true)
		require.NoError(t, err)
		_, err = p.AddContact(ContactChannelPhone, "", "+1 555 0100", true)
		require.NoError(t, err)

		assert.NotNil(t, p.PrimaryContact(ContactChannelEmail))
		assert.NotNil(t, p.PrimaryContact(ContactChannelPhone))
	})

	t.Run("SetPrimaryContact swaps atomically in memory", func(t *testing.T) {
		p := newParty(t)
		first, err := p.AddContact(ContactChannelEmail, "", "a@example.com", true)
		require.NoError(t, err)
		second, err := p.AddContact(ContactChannelEmail, "", "b@example.com", false)
		require.NoError(t, err)

		require.NoError(t, p.SetPrimaryContact(second.ID))

		primary := p.PrimaryContact(ContactChannelEmail)
		require.NotNil(t, primary)
		assert.Equal(t, second.ID, primary.ID)
		for _, c := range p.Contacts {
			if c.ID == first.ID {
				assert.False(t, c.IsPrimary)
			}
		}
	})

	t.Run("SetPrimaryContact on foreign contact", func(t *testing.T) {
		p := newParty(t)
		err := p.SetPrimaryContact(uuid.New())
		require.Error(t, err)
	})

	t.Run("PrimaryEmail", func(t *testing.T) {
		p := newParty(t)
		assert.Empty(t, p.PrimaryEmail())
		_, err := p.AddContact(ContactChannelEmail, "", "hello@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, "hello@example.com", p.PrimaryEmail())
	})
}
