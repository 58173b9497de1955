package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		u, err := NewUser("Maria.Lopez", "correct-horse-battery")
		require.NoError(t, err)
		assert.Equal(t, "maria.lopez", u.Username)
		assert.Equal(t, UserStatusPending, u.Status)
		assert.NotEqual(t, "correct-horse-battery", u.PasswordHash)
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "longenoughpassword"},
		{"username with spaces", "maria lopez", "longenoughpassword"},
		{"password too short", "maria", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.username, tt.password)
			require.Error(t, err)
		})
	}
}

func TestUserPassword(t *testing.T) {
	t.Run("verify accepts only the right password", func(t *testing.T) {
		u, err := NewUser("maria", "correct-horse-battery")
		require.NoError(t, err)
		assert.True(t, u.VerifyPassword("correct-horse-battery"))
		assert.False(t, u.VerifyPassword("wrong-password"))
	})

	t.Run("change requires the current password", func(t *testing.T) {
		u, err := NewUser("maria", "old-password-1")
		require.NoError(t, err)

		require.Error(t, u.ChangePassword("not-the-old-one", "new-password-1"))
		require.NoError(t, u.ChangePassword("old-password-1", "new-password-1"))
		assert.True(t, u.VerifyPassword("new-password-1"))
		assert.False(t, u.VerifyPassword("old-password-1"))
	})
}

func TestUserLifecycle(t *testing.T) {
	u, err := NewUser("maria", "correct-horse-battery")
	require.NoError(t, err)

	require.NoError(t, u.Activate())
	assert.True(t, u.IsActive())
	assert.Error(t, u.Activate())

	require.NoError(t, u.SetEmail("Maria@Example.com"))
	assert.Equal(t, "maria@example.com", u.Email)
	assert.Error(t, u.SetEmail("not-an-email"))

	require.NoError(t, u.Deactivate())
	assert.False(t, u.IsActive())
}

func TestFarm(t *testing.T) {
	t.Run("code is normalized upper", func(t *testing.T) {
		f, err := NewFarm("green-valley", "Green Valley Farm")
		require.NoError(t, err)
		assert.Equal(t, "GREEN-VALLEY", f.Code)
		assert.True(t, f.IsActive())
	})

	t.Run("invalid code rejected", func(t *testing.T) {
		_, err := NewFarm("green valley!", "Green Valley Farm")
		require.Error(t, err)
	})

	t.Run("suspension gates activity", func(t *testing.T) {
		f, err := NewFarm("gv", "Green Valley Farm")
		require.NoError(t, err)
		require.NoError(t, f.Suspend())
		assert.False(t, f.IsActive())
		assert.Error(t, f.Suspend())
		require.NoError(t, f.Activate())
		assert.True(t, f.IsActive())
	})
}
