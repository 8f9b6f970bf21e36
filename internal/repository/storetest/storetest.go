// Package storetest holds the behaviour every storage adapter must share.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/stats"
)

// Stores is one fresh, empty set of repositories.
type Stores struct {
	Users         model.UserStore
	Scores        model.ScoreStore
	RefreshTokens model.RefreshTokenStore
}

// Factory returns empty stores for a single subtest.
type Factory func(t *testing.T) Stores

// Run executes the storage contract against stores produced by factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("users", func(t *testing.T) { testUsers(t, factory(t)) })
	t.Run("user_conflicts", func(t *testing.T) { testUserConflicts(t, factory(t)) })
	t.Run("record_score", func(t *testing.T) { testRecordScore(t, factory(t)) })
	t.Run("record_anonymous", func(t *testing.T) { testRecordAnonymous(t, factory(t)) })
	t.Run("record_unknown_user", func(t *testing.T) { testRecordUnknownUser(t, factory(t)) })
	t.Run("list_between", func(t *testing.T) { testListBetween(t, factory(t)) })
	t.Run("same_timestamp_order", func(t *testing.T) { testSameTimestampOrder(t, factory(t)) })
	t.Run("concurrent_records", func(t *testing.T) { testConcurrentRecords(t, factory(t)) })
	t.Run("refresh_tokens", func(t *testing.T) { testRefreshTokens(t, factory(t)) })
}

// NewUser builds a user fixture with millisecond timestamps every backend can round-trip.
func NewUser(username, class string) model.User {
	u := model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@jecna.cz",
		PasswordHash: "hash-" + username,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if class != "" {
		u.Class = &class
	}
	return u
}

func testUsers(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", "3.A"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, alice.ID)
	require.NotNil(t, alice.Class)
	assert.Equal(t, "3.A", *alice.Class)
	assert.Equal(t, model.Stats{}, alice.Stats)

	bob, err := s.Users.Create(ctx, NewUser("bob", ""))
	require.NoError(t, err)
	assert.False(t, bob.HasClass())

	got, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@jecna.cz", got.Email)
	assert.Equal(t, "hash-alice", got.PasswordHash)
	assert.Equal(t, alice.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	byEmail, err := s.Users.GetByLogin(ctx, "alice@jecna.cz")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byUsername, err := s.Users.GetByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, byUsername.ID)

	_, err = s.Users.GetByLogin(ctx, "carol")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = s.Users.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, model.ErrNotFound))

	users, err := s.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func testUserConflicts(t *testing.T, s Stores) {
	ctx := context.Background()

	_, err := s.Users.Create(ctx, NewUser("alice", "3.A"))
	require.NoError(t, err)

	sameUsername := NewUser("alice", "")
	sameUsername.Email = "other@jecna.cz"
	_, err = s.Users.Create(ctx, sameUsername)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))
	assert.Contains(t, err.Error(), "username")

	sameEmail := NewUser("bob", "")
	sameEmail.Email = "alice@jecna.cz"
	_, err = s.Users.Create(ctx, sameEmail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))
	assert.Contains(t, err.Error(), "email")

	users, err := s.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testRecordScore(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", "3.A"))
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Millisecond)
	first, err := s.Scores.Record(ctx, model.Score{
		ID:        uuid.New(),
		UserID:    &alice.ID,
		Game:      "wordJecna",
		Won:       true,
		Points:    50,
		Details:   json.RawMessage(`{"attempts":3}`),
		CreatedAt: base,
	}, stats.Updater(true, 50))
	require.NoError(t, err)
	require.NotNil(t, first.UserID)
	assert.Equal(t, alice.ID, *first.UserID)

	_, err = s.Scores.Record(ctx, model.Score{
		ID:        uuid.New(),
		UserID:    &alice.ID,
		Game:      "wordJecna",
		Won:       false,
		Points:    0,
		CreatedAt: base.Add(time.Second),
	}, stats.Updater(false, 0))
	require.NoError(t, err)

	got, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{TotalGames: 2, Wins: 1, Streak: 0, BestStreak: 1, Score: 50}, got.Stats)

	scores, err := s.Scores.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.False(t, scores[0].Won, "newest first")
	assert.True(t, scores[1].Won)
	assert.Equal(t, int64(50), scores[1].Points)
	assert.Equal(t, "wordJecna", scores[1].Game)
	assert.Equal(t, base.UnixMilli(), scores[1].CreatedAt.UnixMilli())
	assert.JSONEq(t, `{"attempts":3}`, string(scores[1].Details))
}

func testSameTimestampOrder(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", ""))
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Millisecond)
	games := []string{"wordJecna", "connections", "fixCode", "crossRoute"}
	for _, game := range games {
		_, err := s.Scores.Record(ctx, model.Score{
			ID:        uuid.New(),
			UserID:    &alice.ID,
			Game:      game,
			CreatedAt: at,
		}, stats.Updater(false, 0))
		require.NoError(t, err)
	}

	want := []string{"crossRoute", "fixCode", "connections", "wordJecna"}

	scores, err := s.Scores.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(scores))
	for _, sc := range scores {
		got = append(got, sc.Game)
	}
	assert.Equal(t, want, got, "equal timestamps list latest insert first")

	scores, err = s.Scores.ListByUserBetween(ctx, alice.ID, at, at.Add(time.Millisecond))
	require.NoError(t, err)
	got = got[:0]
	for _, sc := range scores {
		got = append(got, sc.Game)
	}
	assert.Equal(t, want, got)
}

func testRecordAnonymous(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", "3.A"))
	require.NoError(t, err)

	saved, err := s.Scores.Record(ctx, model.Score{
		ID:        uuid.New(),
		Game:      "fixCode",
		Won:       true,
		Points:    20,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}, stats.Updater(true, 20))
	require.NoError(t, err)
	assert.Nil(t, saved.UserID)

	got, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{}, got.Stats)

	scores, err := s.Scores.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func testRecordUnknownUser(t *testing.T, s Stores) {
	ctx := context.Background()

	ghost := uuid.New()
	_, err := s.Scores.Record(ctx, model.Score{
		ID:        uuid.New(),
		UserID:    &ghost,
		Game:      "fixCode",
		Won:       true,
		Points:    20,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}, stats.Updater(true, 20))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	scores, err := s.Scores.ListByUser(ctx, ghost)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func testListBetween(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", ""))
	require.NoError(t, err)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{
		day.Add(-time.Millisecond),
		day,
		day.Add(12 * time.Hour),
		day.Add(24 * time.Hour),
	} {
		_, err := s.Scores.Record(ctx, model.Score{
			ID:        uuid.New(),
			UserID:    &alice.ID,
			Game:      fmt.Sprintf("game%d", i),
			Points:    int64(i),
			CreatedAt: at,
		}, stats.Updater(false, int64(i)))
		require.NoError(t, err)
	}

	scores, err := s.Scores.ListByUserBetween(ctx, alice.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "game2", scores[0].Game)
	assert.Equal(t, "game1", scores[1].Game)
}

func testConcurrentRecords(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", "3.A"))
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Scores.Record(ctx, model.Score{
				ID:        uuid.New(),
				UserID:    &alice.ID,
				Game:      "connections",
				Won:       true,
				Points:    10,
				CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
			}, stats.Updater(true, 10))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{TotalGames: writers, Wins: writers, Streak: writers, BestStreak: writers, Score: 10 * writers}, got.Stats)

	scores, err := s.Scores.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, scores, writers)
}

func testRefreshTokens(t *testing.T, s Stores) {
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, NewUser("alice", ""))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	first := model.RefreshToken{
		ID:        uuid.New(),
		JTI:       uuid.NewString(),
		UserID:    alice.ID,
		TokenHash: []byte{1, 2, 3},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, s.RefreshTokens.Create(ctx, first))

	rotatedFrom := first.JTI
	second := model.RefreshToken{
		ID:             uuid.New(),
		JTI:            uuid.NewString(),
		UserID:         alice.ID,
		TokenHash:      []byte{4, 5, 6},
		IssuedAt:       now,
		ExpiresAt:      now.Add(time.Hour),
		RotatedFromJTI: &rotatedFrom,
	}
	require.NoError(t, s.RefreshTokens.Create(ctx, second))

	got, err := s.RefreshTokens.GetByJTI(ctx, first.JTI)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Equal(t, []byte{1, 2, 3}, got.TokenHash)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), got.ExpiresAt.UnixMilli())
	assert.Nil(t, got.RevokedAt)

	revoked, err := s.RefreshTokens.RevokeByJTI(ctx, first.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)
	got, err = s.RefreshTokens.GetByJTI(ctx, first.JTI)
	require.NoError(t, err)
	assert.NotNil(t, got.RevokedAt)

	revoked, err = s.RefreshTokens.RevokeByJTI(ctx, first.JTI)
	require.NoError(t, err)
	assert.False(t, revoked, "second revocation must report nothing revoked")

	revoked, err = s.RefreshTokens.RevokeByJTI(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, revoked)

	got, err = s.RefreshTokens.GetByJTI(ctx, second.JTI)
	require.NoError(t, err)
	assert.Nil(t, got.RevokedAt)
	require.NotNil(t, got.RotatedFromJTI)
	assert.Equal(t, first.JTI, *got.RotatedFromJTI)

	require.NoError(t, s.RefreshTokens.RevokeAllByUser(ctx, alice.ID))
	got, err = s.RefreshTokens.GetByJTI(ctx, second.JTI)
	require.NoError(t, err)
	assert.NotNil(t, got.RevokedAt)

	_, err = s.RefreshTokens.GetByJTI(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
