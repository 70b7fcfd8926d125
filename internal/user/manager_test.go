package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager() *Manager {
	return NewManager(NewMemoryRepository(), zap.NewNop())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	created, err := m.Register(ctx, "gorkha", "terraced-fields")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "terraced-fields", created.PasswordHash, "passwords are stored hashed")

	user, err := m.Authenticate(ctx, "gorkha", "terraced-fields")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Register(ctx, "gorkha", "terraced-fields")
	require.NoError(t, err)

	_, err = m.Authenticate(ctx, "gorkha", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Authenticate(ctx, "nobody", "terraced-fields")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown users get the same error as wrong passwords")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Register(ctx, "gorkha", "terraced-fields")
	require.NoError(t, err)

	_, err = m.Register(ctx, "gorkha", "another-pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterValidatesInput(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Register(ctx, "ab", "long-enough-pass")
	assert.Error(t, err, "short usernames are rejected")

	_, err = m.Register(ctx, "bad name!", "long-enough-pass")
	assert.Error(t, err, "usernames are restricted to a safe alphabet")

	_, err = m.Register(ctx, "gorkha", "short")
	assert.Error(t, err, "short passwords are rejected")
}
