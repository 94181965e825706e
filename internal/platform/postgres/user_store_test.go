package postgres_test

import (
	"errors"
	"testing"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostgresUserStore_Create(t *testing.T) {
	t.Run("hashes the password and assigns an id", func(t *testing.T) {
		s := newTestStores(t)
		ctx := testContext(t)

		user, err := domain.NewUser(uniqueUsername("alice"), "password123")
		require.NoError(t, err)

		require.NoError(t, s.users.Create(ctx, user))
		assert.Positive(t, user.ID)
		assert.Empty(t, user.Password, "plaintext password should be cleared")
		require.NotEmpty(t, user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
	})

	t.Run("duplicate username", func(t *testing.T) {
		s := newTestStores(t)
		ctx := testContext(t)

		first := createTestUser(t, ctx, s.users)

		dup, err := domain.NewUser(first.Username, "another-password")
		require.NoError(t, err)

		err = s.users.Create(ctx, dup)
		assert.ErrorIs(t, err, store.ErrUsernameExists)
		assert.True(t, store.IsDuplicateError(err))
	})

	t.Run("invalid user is rejected before reaching the database", func(t *testing.T) {
		s := newTestStores(t)
		ctx := testContext(t)

		err := s.users.Create(ctx, &domain.User{Username: "x", Password: "password123"})
		assert.ErrorIs(t, err, domain.ErrUsernameTooShort)

		err = s.users.Create(ctx, &domain.User{Username: "validname"})
		assert.ErrorIs(t, err, domain.ErrEmptyPassword)
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	s := newTestStores(t)
	ctx := testContext(t)

	created := createTestUser(t, ctx, s.users)

	t.Run("by id", func(t *testing.T) {
		got, err := s.users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Username, got.Username)
		assert.Equal(t, created.HashedPassword, got.HashedPassword)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("by username", func(t *testing.T) {
		got, err := s.users.GetByUsername(ctx, "  "+created.Username+" ")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.users.GetByID(ctx, created.ID+1000)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = s.users.GetByUsername(ctx, "nobody_here")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestPostgresUserStore_UpdatePassword(t *testing.T) {
	s := newTestStores(t)
	ctx := testContext(t)

	user := createTestUser(t, ctx, s.users)

	require.NoError(t, s.users.UpdatePassword(ctx, user.ID, "new-password-1"))

	got, err := s.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.HashedPassword), []byte("new-password-1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(got.HashedPassword), []byte("password123")))

	err = s.users.UpdatePassword(ctx, user.ID+1000, "whatever-pass")
	assert.True(t, errors.Is(err, store.ErrUserNotFound))

	assert.ErrorIs(t, s.users.UpdatePassword(ctx, user.ID, ""), domain.ErrEmptyPassword)
}
