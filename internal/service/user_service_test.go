package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/collab-api/internal/service/auth"
)

func newUserServiceForTest(t *testing.T) (UserService, *fakeUserStore) {
	t.Helper()

	users := newFakeUserStore()
	svc, err := NewUserService(users, auth.NewBcryptVerifier(), nil)
	require.NoError(t, err)
	return svc, users
}

func TestRegister_HashesPassword(t *testing.T) {
	t.Parallel()

	svc, users := newUserServiceForTest(t)

	user, err := svc.Register(context.Background(), "ana@example.com", "Ana", "a long enough password")
	require.NoError(t, err)

	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "a long enough password", user.HashedPassword)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.HashedPassword, stored.HashedPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceForTest(t)

	_, err := svc.Register(context.Background(), "ana@example.com", "Ana", "a long enough password")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ana@example.com", "Other Ana", "another long password")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceForTest(t)

	_, err := svc.Register(context.Background(), "ana@example.com", "Ana", "short")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceForTest(t)

	registered, err := svc.Register(context.Background(), "ana@example.com", "Ana", "a long enough password")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "ana@example.com", "a long enough password")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "ana@example.com", "not the password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "a long enough password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestListUsers_ExcludesCaller(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceForTest(t)

	ana, err := svc.Register(context.Background(), "ana@example.com", "Ana", "a long enough password")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "bo@example.com", "Bo", "a long enough password")
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), ana.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Bo", listed[0].DisplayName)

	everyone, err := svc.List(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, everyone, 2)
}
