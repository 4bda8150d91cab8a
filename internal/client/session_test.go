package client

import (
	"os"
	"path/filepath"
	"testing"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "", s.Role())

	require.NoError(t, s.Save("abc.def.ghi"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", reloaded.Token())

	require.NoError(t, reloaded.Clear())
	assert.False(t, reloaded.LoggedIn())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	assert.NoError(t, reloaded.Clear())
}

func TestSession_RoleFromToken(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("server-secret", 0)
	tests := []struct {
		name    string
		role    string
		isAdmin bool
	}{
		{"admin", model.RoleAdmin, true},
		{"user", model.RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtUtil.GenerateToken("u-1", tt.role)
			require.NoError(t, err)

			s, err := LoadSession(filepath.Join(t.TempDir(), "token"))
			require.NoError(t, err)
			require.NoError(t, s.Save(token))

			assert.Equal(t, tt.role, s.Role())
			assert.Equal(t, tt.isAdmin, s.IsAdmin())
			claims, err := s.Claims()
			require.NoError(t, err)
			assert.Equal(t, "u-1", claims.User.ID)
		})
	}
}

func TestSession_RoleIsNotVerified(t *testing.T) {
	// signed with a key the client never sees
	token, err := utils.NewJWTUtil("some-other-secret", 0).GenerateToken("u-1", model.RoleAdmin)
	require.NoError(t, err)

	s := &Session{token: token}
	assert.True(t, s.IsAdmin())
}

func TestSession_GarbageToken(t *testing.T) {
	s := &Session{token: "not-a-jwt"}
	_, err := s.Claims()
	assert.Error(t, err)
	assert.False(t, s.IsAdmin())

	_, err = (&Session{}).Claims()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
