package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/jecnagames-server/internal/mocks"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/testutil"
)

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	user, session, err := env.auth.Register(ctx, model.RegisterParams{
		Username: "  alice ",
		Email:    "Alice@Jecna.CZ",
		Password: "hunter22",
		Class:    strPtr("3.A"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@jecna.cz", user.Email)
	require.NotNil(t, user.Class)
	assert.Equal(t, "3.A", *user.Class)
	assert.Equal(t, model.Stats{}, user.Stats)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	got, err := env.auth.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, model.RegisterParams{Username: "alice", Email: "shared@jecna.cz", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = env.auth.Register(ctx, model.RegisterParams{Username: "bob", Email: "SHARED@jecna.cz", Password: "secret2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuth_Register_DuplicateUsername(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, model.RegisterParams{Username: "alice", Email: "a@jecna.cz", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = env.auth.Register(ctx, model.RegisterParams{Username: "alice", Email: "b@jecna.cz", Password: "secret2"})
	assert.True(t, errors.Is(err, model.ErrConflict))
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params model.RegisterParams
	}{
		{name: "missing username", params: model.RegisterParams{Username: "  ", Email: "a@jecna.cz", Password: "secret1"}},
		{name: "missing email", params: model.RegisterParams{Username: "alice", Password: "secret1"}},
		{name: "missing password", params: model.RegisterParams{Username: "alice", Email: "a@jecna.cz"}},
		{name: "malformed email", params: model.RegisterParams{Username: "alice", Email: "not-an-email", Password: "secret1"}},
		{name: "short password", params: model.RegisterParams{Username: "alice", Email: "a@jecna.cz", Password: "abc"}},
		{name: "long password", params: model.RegisterParams{Username: "alice", Email: "a@jecna.cz", Password: strings.Repeat("x", 73)}},
		{name: "long username", params: model.RegisterParams{Username: strings.Repeat("u", 33), Email: "a@jecna.cz", Password: "secret1"}},
		{name: "long class", params: model.RegisterParams{Username: "alice", Email: "a@jecna.cz", Password: "secret1", Class: strPtr(strings.Repeat("c", 17))}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			_, _, err := env.auth.Register(context.Background(), tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
		})
	}
}

func TestAuth_Register_BlankClassMeansNone(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	user, _, err := env.auth.Register(context.Background(), model.RegisterParams{
		Username: "alice", Email: "a@jecna.cz", Password: "secret1", Class: strPtr("   "),
	})
	require.NoError(t, err)
	assert.Nil(t, user.Class)
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	registered, _, err := env.auth.Register(ctx, model.RegisterParams{Username: "alice", Email: "alice@jecna.cz", Password: "hunter22"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "by email", identifier: "alice@jecna.cz", password: "hunter22"},
		{name: "by email any case", identifier: "ALICE@jecna.cz", password: "hunter22"},
		{name: "by username", identifier: "alice", password: "hunter22"},
		{name: "wrong password", identifier: "alice", password: "hunter23", wantErr: model.ErrAuthentication},
		{name: "unknown user", identifier: "carol", password: "hunter22", wantErr: model.ErrAuthentication},
		{name: "empty identifier", identifier: " ", password: "hunter22", wantErr: model.ErrValidation},
		{name: "empty password", identifier: "alice", password: "", wantErr: model.ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, session, err := env.auth.Login(ctx, tt.identifier, tt.password)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
			assert.NotEmpty(t, session.AccessToken)
		})
	}
}

func TestAuth_RefreshAndLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	_, session, err := env.auth.Register(ctx, model.RegisterParams{Username: "alice", Email: "alice@jecna.cz", Password: "hunter22"})
	require.NoError(t, err)

	rotated, err := env.auth.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	require.NoError(t, env.auth.Logout(ctx, rotated.RefreshToken))
	_, err = env.auth.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenRevoked)
}

func TestAuth_RefreshReuse(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	_, session, err := env.auth.Register(ctx, model.RegisterParams{Username: "mallory", Email: "mallory@jecna.cz", Password: "hunter22"})
	require.NoError(t, err)

	rotated, err := env.auth.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)

	_, err = env.auth.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenRevoked)

	_, err = env.auth.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenRevoked)
	assert.NoError(t, env.auth.Logout(ctx, rotated.RefreshToken), "logout of a revoked token is a no-op")
}

func TestAuth_GetUser_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_, err := env.auth.GetUser(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestAuth_StoreFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lg := testutil.MakeNoopLogger()

	t.Run("hash fails", func(t *testing.T) {
		hasher := mocks.NewPasswordHasher(t)
		hasher.On("Hash", "secret1").Return("", assert.AnError).Once()

		a := NewAuth(mocks.NewUserStore(t), hasher, nil, lg)
		_, _, err := a.Register(ctx, model.RegisterParams{Username: "alice", Email: "a@jecna.cz", Password: "secret1"})
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("create fails", func(t *testing.T) {
		hasher := mocks.NewPasswordHasher(t)
		hasher.On("Hash", "secret1").Return("hash", nil).Once()
		users := mocks.NewUserStore(t)
		users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.Username == "alice" && u.PasswordHash == "hash"
		})).Return(model.User{}, assert.AnError).Once()

		a := NewAuth(users, hasher, nil, lg)
		_, _, err := a.Register(ctx, model.RegisterParams{Username: "alice", Email: "a@jecna.cz", Password: "secret1"})
		require.ErrorIs(t, err, assert.AnError)
		assert.False(t, errors.Is(err, model.ErrConflict))
	})

	t.Run("lookup fails", func(t *testing.T) {
		users := mocks.NewUserStore(t)
		users.On("GetByLogin", ctx, "alice").Return(model.User{}, assert.AnError).Once()

		a := NewAuth(users, mocks.NewPasswordHasher(t), nil, lg)
		_, _, err := a.Login(ctx, "alice", "secret1")
		require.ErrorIs(t, err, assert.AnError)
		assert.False(t, errors.Is(err, model.ErrAuthentication))
	})
}
