package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmascout/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, "test-signing-key")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ada@example.com", "s3cret-password", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)

	token, err := svc.Login(ctx, "ada@example.com", "s3cret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "pw1", "Ada", "L")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ada@example.com", "pw2", "Other", "Person")
	assert.ErrorContains(t, err, "already registered")
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "correct", "Ada", "L")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ada@example.com", "pw", "Ada", "L")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "ada@example.com", identity.Email)
}

func TestValidateToken_WrongKey(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "pw", "Ada", "L")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "other.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	other := NewService(st, "a-different-signing-key")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
