package services

import (
	"testing"

	"drivebox/models"
	"drivebox/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register("alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	loggedIn, token, err := env.auth.Login("alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := utils.VerifyJWTTokenWithSecret(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register("alice", "correct-horse")
	require.NoError(t, err)

	_, err = env.auth.Register("alice", "another-pass")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register("", "correct-horse")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.auth.Register("bob", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginRejectsBadPasswordAndDisabledAccount(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register("alice", "correct-horse")
	require.NoError(t, err)

	_, _, err = env.auth.Login("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", models.UserStatusDisabled).Error)
	_, _, err = env.auth.Login("alice", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBootstrapSuperadminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.BootstrapSuperadmin("root", "bootstrap-pass"))
	require.NoError(t, env.auth.BootstrapSuperadmin("root", "bootstrap-pass"))

	users, err := env.auth.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleSuperadmin, users[0].Role)
}

func TestBootstrapSuperadminSkipsWithoutPassword(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.BootstrapSuperadmin("root", ""))
	users, err := env.auth.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}
