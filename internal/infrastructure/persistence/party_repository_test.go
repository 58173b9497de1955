package persistence

import (
	"context"
	"math/rand"
	"testing"

	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupPartyTestDB builds an in-memory store with the same partial
// unique indexes the migrations create, so the one-primary-per-channel
// and one-role-per-farm-and-type invariants are enforced at the storage
// level, not only inside the aggregate.
func setupPartyTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&party.Party{}, &party.PartyRole{}, &party.Contact{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX idx_contacts_one_primary ON contacts (party_id, channel) WHERE is_primary").Error)
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX idx_party_roles_farm_type ON party_roles (party_id, farm_id, type)").Error)

	return &Database{DB: db}
}

// requireOnePrimaryPerChannel asserts the storage-level invariant
// directly, bypassing the aggregate.
func requireOnePrimaryPerChannel(t *testing.T, db *Database, partyID uuid.UUID) {
	t.Helper()
	type row struct {
		Channel string
		N       int
	}
	var rows []row
	err := db.DB.Model(&party.Contact{}).
		Select("channel, count(*) as n").
		Where("party_id = ? AND is_primary", partyID).
		Group("channel").
		Scan(&rows).Error
	require.NoError(t, err)
	for _, r := range rows {
		require.Equal(t, 1, r.N, "channel %s has %d primaries", r.Channel, r.N)
	}
}

func TestGormPartyRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips the whole aggregate", func(t *testing.T) {
		db := setupPartyTestDB(t)
		repo := NewGormPartyRepository(db)
		farmID := uuid.New()

		p, err := party.NewParty("Green Valley Co-op", "Green Valley Cooperative LLC", party.PartyKindOrganization)
		require.NoError(t, err)
		_, err = p.AddRole(farmID, party.RoleTypeSupplier, party.RoleMetadata{PaymentTermsDays: 30})
		require.NoError(t, err)
		_, err = p.AddContact(party.ContactChannelEmail, "orders", "orders@greenvalley.example", true)
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Green Valley Co-op", found.DisplayName)
		require.Len(t, found.Roles, 1)
		assert.Equal(t, 30, found.Roles[0].Metadata.PaymentTermsDays)
		require.Len(t, found.Contacts, 1)
		assert.True(t, found.Contacts[0].IsPrimary)
	})

	t.Run("promoting an earlier contact over a later primary succeeds", func(t *testing.T) {
		db := setupPartyTestDB(t)
		repo := NewGormPartyRepository(db)

		p, err := party.NewParty("Riverside Orchards", "", party.PartyKindOrganization)
		require.NoError(t, err)
		first, err := p.AddContact(party.ContactChannelEmail, "office", "office@riverside.example", false)
		require.NoError(t, err)
		_, err = p.AddContact(party.ContactChannelEmail, "sales", "sales@riverside.example", true)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		// the new primary precedes the demoted one in the aggregate, so a
		// write in contact order would promote before demoting and trip
		// the partial unique index
		loaded, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.SetPrimaryContact(first.ID))
		require.NoError(t, repo.Save(ctx, loaded))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		primary := found.PrimaryContact(party.ContactChannelEmail)
		require.NotNil(t, primary)
		assert.Equal(t, first.ID, primary.ID)
		requireOnePrimaryPerChannel(t, db, p.ID)
	})

	t.Run("duplicate role for same farm and type answers conflict", func(t *testing.T) {
		db := setupPartyTestDB(t)
		repo := NewGormPartyRepository(db)
		farmID := uuid.New()

		p, err := party.NewParty("Hilltop Dairy", "", party.PartyKindOrganization)
		require.NoError(t, err)
		role, err := p.AddRole(farmID, party.RoleTypeSupplier, party.RoleMetadata{})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		clash, err := party.NewPartyRole(p.ID, farmID, party.RoleTypeSupplier, party.RoleMetadata{})
		require.NoError(t, err)
		require.NotEqual(t, role.ID, clash.ID)
		p.Roles = append(p.Roles, *clash)

		assert.ErrorIs(t, repo.Save(ctx, p), shared.ErrConflict)
	})

	t.Run("unknown id answers not found", func(t *testing.T) {
		db := setupPartyTestDB(t)
		repo := NewGormPartyRepository(db)
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// TestGormPartyRepository_PrimarySwapsStayConsistent drives two writers
// over the same party with interleaved loads and saves, randomly
// promoting contacts across channels. After every save exactly one
// contact per (party, channel) holds the primary flag and no valid swap
// is refused.
func TestGormPartyRepository_PrimarySwapsStayConsistent(t *testing.T) {
	ctx := context.Background()
	db := setupPartyTestDB(t)
	repo := NewGormPartyRepository(db)

	p, err := party.NewParty("Sunrise Poultry", "", party.PartyKindOrganization)
	require.NoError(t, err)

	var contactIDs []uuid.UUID
	seed := []struct {
		channel party.ContactChannel
		label   string
		value   string
		primary bool
	}{
		{party.ContactChannelEmail, "office", "office@sunrise.example", true},
		{party.ContactChannelEmail, "sales", "sales@sunrise.example", false},
		{party.ContactChannelEmail, "billing", "billing@sunrise.example", false},
		{party.ContactChannelPhone, "office", "+1 555 0100", true},
		{party.ContactChannelPhone, "mobile", "+1 555 0101", false},
	}
	for _, s := range seed {
		c, err := p.AddContact(s.channel, s.label, s.value, s.primary)
		require.NoError(t, err)
		contactIDs = append(contactIDs, c.ID)
	}
	require.NoError(t, repo.Save(ctx, p))

	rng := rand.New(rand.NewSource(7))

	writerA, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	writerB, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		w := writerA
		if i%2 == 1 {
			w = writerB
		}

		target := contactIDs[rng.Intn(len(contactIDs))]
		require.NoError(t, w.SetPrimaryContact(target))
		require.NoError(t, repo.Save(ctx, w))

		requireOnePrimaryPerChannel(t, db, p.ID)

		// occasionally refresh one writer so both stale and fresh
		// snapshots hit storage
		if rng.Intn(4) == 0 {
			fresh, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			if i%2 == 1 {
				writerB = fresh
			} else {
				writerA = fresh
			}
		}
	}

	final, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, final.PrimaryContact(party.ContactChannelEmail))
	require.NotNil(t, final.PrimaryContact(party.ContactChannelPhone))
	requireOnePrimaryPerChannel(t, db, p.ID)
}
