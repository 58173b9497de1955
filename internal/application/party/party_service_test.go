package party

import (
	"context"
	"testing"

	appidentity "github.com/farmops/backend/internal/application/identity"
	"github.com/farmops/backend/internal/domain/identity"
	"github.com/farmops/backend/internal/domain/party"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPartyRepository is a mock implementation of party.Repository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByRoleID(ctx context.Context, roleID uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByFarmAndRoleType(ctx context.Context, farmID uuid.UUID, roleType party.RoleType, filter shared.Filter) (*shared.Paginated[party.Party], error) {
	args := m.Called(ctx, farmID, roleType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[party.Party]), args.Error(1)
}

func (m *MockPartyRepository) FindByFarmAndPrimaryEmail(ctx context.Context, farmID uuid.UUID, email string) ([]party.Party, error) {
	args := m.Called(ctx, farmID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]party.Party), args.Error(1)
}

func (m *MockPartyRepository) Save(ctx context.Context, p *party.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func testAuthz(farmID uuid.UUID) *appidentity.Authorization {
	return &appidentity.Authorization{
		UserID: uuid.New(),
		FarmID: farmID,
		Role:   identity.RoleManager,
	}
}

func existingPartyWithEmail(t *testing.T, farmID uuid.UUID, email string, roleType party.RoleType) *party.Party {
	t.Helper()
	p, err := party.NewParty("Existing Actor", "", party.PartyKindOrganization)
	require.NoError(t, err)
	_, err = p.AddContact(party.ContactChannelEmail, "work", email, true)
	require.NoError(t, err)
	_, err = p.AddRole(farmID, roleType, party.RoleMetadata{})
	require.NoError(t, err)
	return p
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	farmID := uuid.New()

	input := CreatePartyInput{
		DisplayName: "Hilltop Dairy",
		Kind:        party.PartyKindOrganization,
		Role:        RoleInput{Type: party.RoleTypeCustomerBusiness},
		Contacts: []ContactInput{
			{Channel: party.ContactChannelEmail, Value: "orders@hilltop.example", Primary: true},
		},
	}

	t.Run("creates party with role and contacts", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		repo.On("FindByFarmAndPrimaryEmail", ctx, farmID, "orders@hilltop.example").
			Return([]party.Party{}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*party.Party")).Return(nil)

		view, err := svc.Create(ctx, testAuthz(farmID), input)

		require.NoError(t, err)
		assert.Equal(t, "Hilltop Dairy", view.DisplayName)
		require.Len(t, view.Roles, 1)
		assert.Equal(t, party.RoleTypeCustomerBusiness, view.Roles[0].Type)
		require.Len(t, view.Contacts, 1)
		assert.True(t, view.Contacts[0].Primary)
		repo.AssertExpectations(t)
	})

	t.Run("conflicting role on same primary email is duplicate actor", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		existing := existingPartyWithEmail(t, farmID, "orders@hilltop.example", party.RoleTypeCustomerIndividual)
		repo.On("FindByFarmAndPrimaryEmail", ctx, farmID, "orders@hilltop.example").
			Return([]party.Party{*existing}, nil)

		_, err := svc.Create(ctx, testAuthz(farmID), input)

		assert.ErrorIs(t, err, shared.ErrDuplicateActor)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("same email in a different farm does not collide", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		// repository already filters by farm; an empty result means no
		// actor with this email holds any role here
		repo.On("FindByFarmAndPrimaryEmail", ctx, farmID, "orders@hilltop.example").
			Return([]party.Party{}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*party.Party")).Return(nil)

		_, err := svc.Create(ctx, testAuthz(farmID), input)

		assert.NoError(t, err)
	})

	t.Run("supplier role does not conflict with customer role", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		existing := existingPartyWithEmail(t, farmID, "orders@hilltop.example", party.RoleTypeSupplier)
		repo.On("FindByFarmAndPrimaryEmail", ctx, farmID, "orders@hilltop.example").
			Return([]party.Party{*existing}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*party.Party")).Return(nil)

		_, err := svc.Create(ctx, testAuthz(farmID), input)

		assert.NoError(t, err)
	})

	t.Run("storage conflict from racing create surfaces unchanged", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		repo.On("FindByFarmAndPrimaryEmail", ctx, farmID, "orders@hilltop.example").
			Return([]party.Party{}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*party.Party")).Return(shared.ErrConflict)

		_, err := svc.Create(ctx, testAuthz(farmID), input)

		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	farmID := uuid.New()

	t.Run("party with role in another farm only answers not found", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		foreign := existingPartyWithEmail(t, uuid.New(), "who@else.example", party.RoleTypeSupplier)
		repo.On("FindByID", ctx, foreign.ID).Return(foreign, nil)

		_, err := svc.Get(ctx, testAuthz(farmID), foreign.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("view only carries roles of the caller's farm", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		p := existingPartyWithEmail(t, farmID, "shared@actor.example", party.RoleTypeSupplier)
		_, err := p.AddRole(uuid.New(), party.RoleTypeCustomerBusiness, party.RoleMetadata{})
		require.NoError(t, err)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		view, err := svc.Get(ctx, testAuthz(farmID), p.ID)

		require.NoError(t, err)
		require.Len(t, view.Roles, 1)
		assert.Equal(t, party.RoleTypeSupplier, view.Roles[0].Type)
	})
}

func TestService_SetPrimaryContact(t *testing.T) {
	ctx := context.Background()
	farmID := uuid.New()

	t.Run("foreign contact id answers not found", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		p := existingPartyWithEmail(t, farmID, "a@b.example", party.RoleTypeSupplier)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.SetPrimaryContact(ctx, testAuthz(farmID), p.ID, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("promoting demotes the previous primary", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		p := existingPartyWithEmail(t, farmID, "first@b.example", party.RoleTypeSupplier)
		second, err := p.AddContact(party.ContactChannelEmail, "backup", "second@b.example", false)
		require.NoError(t, err)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("Save", ctx, p).Return(nil)

		view, err := svc.SetPrimaryContact(ctx, testAuthz(farmID), p.ID, second.ID)

		require.NoError(t, err)
		primaries := 0
		for _, c := range view.Contacts {
			if c.Channel == party.ContactChannelEmail && c.Primary {
				primaries++
				assert.Equal(t, second.ID, c.ID)
			}
		}
		assert.Equal(t, 1, primaries)
	})
}

func TestService_Archive(t *testing.T) {
	ctx := context.Background()
	farmID := uuid.New()

	t.Run("archive refused while roles remain", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewService(repo, zap.NewNop())
		p := existingPartyWithEmail(t, farmID, "a@b.example", party.RoleTypeSupplier)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		err := svc.Archive(ctx, testAuthz(farmID), p.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestService_ListLegacyCustomers(t *testing.T) {
	ctx := context.Background()
	farmID := uuid.New()

	repo := new(MockPartyRepository)
	svc := NewService(repo, zap.NewNop())

	business := existingPartyWithEmail(t, farmID, "biz@farm.example", party.RoleTypeCustomerBusiness)
	role := business.RoleForFarmAndType(farmID, party.RoleTypeCustomerBusiness)
	require.NotNil(t, role)

	filter := shared.DefaultFilter()
	bizPage := shared.NewPaginated([]party.Party{*business}, 1, filter.Page, filter.PageSize)
	emptyPage := shared.NewPaginated([]party.Party{}, 0, filter.Page, filter.PageSize)
	repo.On("FindByFarmAndRoleType", ctx, farmID, party.RoleTypeCustomerBusiness, filter).Return(&bizPage, nil)
	repo.On("FindByFarmAndRoleType", ctx, farmID, party.RoleTypeCustomerIndividual, filter).Return(&emptyPage, nil)

	page, err := svc.ListLegacyCustomers(ctx, testAuthz(farmID), filter)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	view := page.Items[0]
	assert.Equal(t, role.ID, view.CustomerID)
	assert.Equal(t, business.ID, view.PartyID)
	assert.Equal(t, "biz@farm.example", view.Email)
	assert.Equal(t, party.RoleTypeCustomerBusiness, view.Type)
}
