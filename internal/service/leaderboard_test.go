package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/jecnagames-server/internal/mocks"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/testutil"
)

func TestLeaderboard_PlayersAndClasses(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	alice := register(t, env, "alice", "3.A")
	bob := register(t, env, "bob", "3.A")
	carol := register(t, env, "carol", "")
	register(t, env, "dave", "2.B")

	for _, sub := range []model.SubmitScoreParams{
		{UserID: &alice.ID, Game: "wordJecna", Won: true, Points: 50},
		{UserID: &bob.ID, Game: "fixCode", Won: true, Points: 25},
		{UserID: &carol.ID, Game: "connections", Won: true, Points: 50},
	} {
		_, err := env.score.Submit(ctx, sub)
		require.NoError(t, err)
	}

	players, err := env.leaderboard.Players(ctx, 0)
	require.NoError(t, err)
	require.Len(t, players, 4)
	assert.Equal(t, "alice", players[0].Username)
	assert.Equal(t, "carol", players[1].Username)
	assert.Equal(t, "bob", players[2].Username)
	assert.Equal(t, "dave", players[3].Username)
	assert.Equal(t, 4, players[3].Rank)
	assert.Equal(t, int64(0), players[3].Score)

	top, err := env.leaderboard.Players(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "alice", top[0].Username)

	classes, err := env.leaderboard.Classes(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, model.ClassEntry{Rank: 1, Class: "3.A", TotalScore: 75, AvgScore: 38, Players: 2}, classes[0])
	assert.Equal(t, model.ClassEntry{Rank: 2, Class: "2.B", TotalScore: 0, AvgScore: 0, Players: 1}, classes[1])
}

func TestLeaderboard_PlayersLimit(t *testing.T) {
	t.Parallel()

	users := make([]model.User, 0, 150)
	for i := 0; i < 150; i++ {
		users = append(users, model.User{Username: fmt.Sprintf("user%03d", i), Stats: model.Stats{Score: int64(i)}})
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: 20},
		{name: "negative", limit: -1, want: 20},
		{name: "explicit", limit: 5, want: 5},
		{name: "capped", limit: 1000, want: 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := mocks.NewUserStore(t)
			store.On("List", context.Background()).Return(users, nil).Once()

			svc := NewLeaderboard(store, 20, 100, testutil.MakeNoopLogger())
			entries, err := svc.Players(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
			assert.Equal(t, "user149", entries[0].Username)
		})
	}
}

func TestLeaderboard_StoreFailure(t *testing.T) {
	t.Parallel()

	store := mocks.NewUserStore(t)
	store.On("List", context.Background()).Return(nil, assert.AnError).Twice()

	svc := NewLeaderboard(store, 0, 0, testutil.MakeNoopLogger())

	_, err := svc.Players(context.Background(), 10)
	require.ErrorIs(t, err, assert.AnError)
	_, err = svc.Classes(context.Background())
	require.ErrorIs(t, err, assert.AnError)
}
