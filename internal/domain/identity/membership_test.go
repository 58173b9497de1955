package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipRoleOrdering(t *testing.T) {
	tests := []struct {
		name     string
		held     MembershipRole
		required MembershipRole
		want     bool
	}{
		{"owner covers viewer", RoleOwner, RoleViewer, true},
		{"owner covers owner", RoleOwner, RoleOwner, true},
		{"manager covers member", RoleManager, RoleMember, true},
		{"member does not cover manager", RoleMember, RoleManager, false},
		{"viewer covers only viewer", RoleViewer, RoleViewer, true},
		{"viewer does not cover member", RoleViewer, RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.held.AtLeast(tt.required))
		})
	}
}

func TestNewMembership(t *testing.T) {
	t.Run("valid membership is active", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), RoleMember)
		require.NoError(t, err)
		assert.True(t, m.Active)
		assert.False(t, m.JoinedAt.IsZero())
	})

	t.Run("nil farm rejected", func(t *testing.T) {
		_, err := NewMembership(uuid.Nil, uuid.New(), RoleMember)
		require.Error(t, err)
	})

	t.Run("nil user rejected", func(t *testing.T) {
		_, err := NewMembership(uuid.New(), uuid.Nil, RoleMember)
		require.Error(t, err)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := NewMembership(uuid.New(), uuid.New(), MembershipRole("superuser"))
		require.Error(t, err)
	})
}

func TestMembershipAuthorizes(t *testing.T) {
	t.Run("active membership authorizes up to its rank", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), RoleManager)
		require.NoError(t, err)
		assert.True(t, m.Authorizes(RoleViewer))
		assert.True(t, m.Authorizes(RoleManager))
		assert.False(t, m.Authorizes(RoleOwner))
	})

	t.Run("inactive membership authorizes nothing", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), RoleOwner)
		require.NoError(t, err)
		require.NoError(t, m.Deactivate())
		assert.False(t, m.Authorizes(RoleViewer))
		require.NotNil(t, m.DeactivatedAt)
	})

	t.Run("reactivation restores authorization", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), RoleViewer)
		require.NoError(t, err)
		require.NoError(t, m.Deactivate())
		require.NoError(t, m.Reactivate())
		assert.True(t, m.Authorizes(RoleViewer))
		assert.Nil(t, m.DeactivatedAt)
	})
}

func TestMembershipChangeRole(t *testing.T) {
	t.Run("promotes and bumps version", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), RoleViewer)
		require.NoError(t, err)
		before := m.GetVersion()
		require.NoError(t, m.ChangeRole(RoleManager))
		assert.Equal(t, RoleManager, m.Role)
		assert.Equal(t, before+1, m.GetVersion())
	})

	t.Run("rejected on inactive membership", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), RoleViewer)
		require.NoError(t, err)
		require.NoError(t, m.Deactivate())
		assert.Error(t, m.ChangeRole(RoleOwner))
	})
}
