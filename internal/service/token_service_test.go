package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/jecnagames-server/internal/mocks"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/repository/memory"
	"github.com/dtroode/jecnagames-server/internal/testutil"
	"github.com/dtroode/jecnagames-server/internal/token"
)

func sha(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func TestTokenService_Issue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	manager := mocks.NewTokenManager(t)
	store := mocks.NewRefreshTokenStore(t)

	manager.On("GenerateAccessToken", userID).Return("access", nil).Once()
	manager.On("GenerateRefreshToken", userID).Return("refresh", "jti-1", nil).Once()
	store.On("Create", ctx, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.JTI == "jti-1" &&
			rt.UserID == userID &&
			assert.ObjectsAreEqual(sha("refresh"), rt.TokenHash) &&
			rt.ExpiresAt.Equal(now.Add(time.Hour)) &&
			rt.RotatedFromJTI == nil
	})).Return(nil).Once()

	svc := NewTokenService(manager, store, time.Hour, testutil.MakeNoopLogger())
	svc.now = func() time.Time { return now }

	session, err := svc.Issue(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.Session{AccessToken: "access", RefreshToken: "refresh"}, session)
}

func TestTokenService_Issue_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("access", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewRefreshTokenStore(t)
		manager.On("GenerateAccessToken", userID).Return("", assert.AnError).Once()

		_, err := NewTokenService(manager, store, time.Hour, testutil.MakeNoopLogger()).Issue(ctx, userID)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("persist", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewRefreshTokenStore(t)
		manager.On("GenerateAccessToken", userID).Return("access", nil).Once()
		manager.On("GenerateRefreshToken", userID).Return("refresh", "jti", nil).Once()
		store.On("Create", ctx, mock.Anything).Return(assert.AnError).Once()

		_, err := NewTokenService(manager, store, time.Hour, testutil.MakeNoopLogger()).Issue(ctx, userID)
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestTokenService_Refresh(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()
	presented := "refresh-old"
	revokedAt := now.Add(-time.Minute)

	tests := []struct {
		name         string
		parse        error
		stored       model.RefreshToken
		lookup       error
		revokeFamily bool
		wantErr      error
	}{
		{
			name: "rotates",
			stored: model.RefreshToken{
				JTI: "jti-old", UserID: userID, TokenHash: sha(presented),
				IssuedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour),
			},
		},
		{
			name: "revoked",
			stored: model.RefreshToken{
				JTI: "jti-old", UserID: userID, TokenHash: sha(presented),
				ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt,
			},
			revokeFamily: true,
			wantErr:      model.ErrTokenRevoked,
		},
		{
			name: "expired",
			stored: model.RefreshToken{
				JTI: "jti-old", UserID: userID, TokenHash: sha(presented),
				ExpiresAt: now.Add(-time.Second),
			},
			wantErr: model.ErrTokenExpired,
		},
		{
			name: "hash mismatch",
			stored: model.RefreshToken{
				JTI: "jti-old", UserID: userID, TokenHash: sha("something else"),
				ExpiresAt: now.Add(time.Hour),
			},
			wantErr: model.ErrTokenMismatch,
		},
		{
			name:    "unknown jti",
			lookup:  model.ErrNotFound,
			wantErr: model.ErrAuthentication,
		},
		{
			name:    "unparseable",
			parse:   errors.New("bad signature"),
			wantErr: model.ErrAuthentication,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			manager := mocks.NewTokenManager(t)
			store := mocks.NewRefreshTokenStore(t)

			if tt.parse != nil {
				manager.On("ParseRefreshToken", presented).Return(uuid.Nil, "", tt.parse).Once()
			} else {
				manager.On("ParseRefreshToken", presented).Return(userID, "jti-old", nil).Once()
				store.On("GetByJTI", ctx, "jti-old").Return(tt.stored, tt.lookup).Once()
			}
			if tt.revokeFamily {
				store.On("RevokeAllByUser", ctx, userID).Return(nil).Once()
			}
			if tt.wantErr == nil {
				store.On("RevokeByJTI", ctx, "jti-old").Return(true, nil).Once()
				manager.On("GenerateAccessToken", userID).Return("access-new", nil).Once()
				manager.On("GenerateRefreshToken", userID).Return("refresh-new", "jti-new", nil).Once()
				store.On("Create", ctx, mock.MatchedBy(func(rt model.RefreshToken) bool {
					return rt.JTI == "jti-new" && rt.RotatedFromJTI != nil && *rt.RotatedFromJTI == "jti-old"
				})).Return(nil).Once()
			}

			svc := NewTokenService(manager, store, time.Hour, testutil.MakeNoopLogger())
			session, err := svc.Refresh(ctx, presented)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errors.Is(err, model.ErrAuthentication))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "access-new", session.AccessToken)
			assert.Equal(t, "refresh-new", session.RefreshToken)
		})
	}
}

func TestTokenService_Refresh_LostRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	presented := "refresh-old"

	manager := mocks.NewTokenManager(t)
	store := mocks.NewRefreshTokenStore(t)
	manager.On("ParseRefreshToken", presented).Return(userID, "jti-old", nil).Once()
	store.On("GetByJTI", ctx, "jti-old").Return(model.RefreshToken{
		JTI: "jti-old", UserID: userID, TokenHash: sha(presented), ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()
	store.On("RevokeByJTI", ctx, "jti-old").Return(false, nil).Once()
	store.On("RevokeAllByUser", ctx, userID).Return(nil).Once()

	svc := NewTokenService(manager, store, time.Hour, testutil.MakeNoopLogger())
	_, err := svc.Refresh(ctx, presented)
	require.ErrorIs(t, err, model.ErrTokenRevoked)
}

func TestTokenService_Refresh_ReuseRevokesFamily(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := memory.NewDB()
	jwt := token.NewJWT("family-secret", time.Minute, time.Hour)
	svc := NewTokenService(jwt, memory.NewRefreshTokenRepository(db), jwt.RefreshTTL(), testutil.MakeNoopLogger())
	userID := uuid.New()

	first, err := svc.Issue(ctx, userID)
	require.NoError(t, err)
	other, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenRevoked)

	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenRevoked, "the rotated token belongs to the reused family")
	_, err = svc.Refresh(ctx, other.RefreshToken)
	assert.ErrorIs(t, err, model.ErrTokenRevoked, "every session of the user is revoked")
}

func TestTokenService_Refresh_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := memory.NewDB()
	jwt := token.NewJWT("race-secret", time.Minute, time.Hour)
	svc := NewTokenService(jwt, memory.NewRefreshTokenRepository(db), jwt.RefreshTTL(), testutil.MakeNoopLogger())

	session, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(ctx, session.RefreshToken); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "a refresh token rotates at most once")
}

func TestTokenService_RevokeByToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := mocks.NewTokenManager(t)
	store := mocks.NewRefreshTokenStore(t)

	manager.On("ParseRefreshToken", "good").Return(uuid.New(), "jti", nil).Once()
	manager.On("ParseRefreshToken", "bad").Return(uuid.Nil, "", assert.AnError).Once()
	store.On("RevokeByJTI", ctx, "jti").Return(false, nil).Once()

	svc := NewTokenService(manager, store, time.Hour, testutil.MakeNoopLogger())

	require.NoError(t, svc.RevokeByToken(ctx, "good"))
	err := svc.RevokeByToken(ctx, "bad")
	assert.True(t, errors.Is(err, model.ErrAuthentication))
}

func TestTokenService_RevokeAllForUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	store := mocks.NewRefreshTokenStore(t)
	store.On("RevokeAllByUser", ctx, userID).Return(assert.AnError).Once()

	svc := NewTokenService(mocks.NewTokenManager(t), store, time.Hour, testutil.MakeNoopLogger())
	require.ErrorIs(t, svc.RevokeAllForUser(ctx, userID), assert.AnError)
}

func TestTokenService_GetUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	manager := mocks.NewTokenManager(t)
	manager.On("ParseAccessToken", "good").Return(userID, nil).Once()
	manager.On("ParseAccessToken", "bad").Return(uuid.Nil, assert.AnError).Once()

	svc := NewTokenService(manager, mocks.NewRefreshTokenStore(t), time.Hour, testutil.MakeNoopLogger())

	got, err := svc.GetUserID(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.GetUserID(context.Background(), "bad")
	assert.True(t, errors.Is(err, model.ErrAuthentication))
}
