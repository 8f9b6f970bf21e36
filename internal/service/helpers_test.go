package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/password"
	"github.com/dtroode/jecnagames-server/internal/repository/memory"
	"github.com/dtroode/jecnagames-server/internal/testutil"
	"github.com/dtroode/jecnagames-server/internal/token"
)

type testEnv struct {
	db          *memory.DB
	users       *memory.UserRepository
	scores      *memory.ScoreRepository
	auth        *Auth
	score       *Score
	leaderboard *Leaderboard
}

func newTestEnv() *testEnv {
	db := memory.NewDB()
	users := memory.NewUserRepository(db)
	scores := memory.NewScoreRepository(db)
	lg := testutil.MakeNoopLogger()

	jwt := token.NewJWT("test-secret", time.Minute, time.Hour)
	tokens := NewTokenService(jwt, memory.NewRefreshTokenRepository(db), jwt.RefreshTTL(), lg)

	return &testEnv{
		db:          db,
		users:       users,
		scores:      scores,
		auth:        NewAuth(users, password.NewBcrypt(bcrypt.MinCost), tokens, lg),
		score:       NewScore(scores, model.DefaultGames, time.UTC, 0, lg),
		leaderboard: NewLeaderboard(users, 50, 100, lg),
	}
}

func strPtr(s string) *string {
	return &s
}
