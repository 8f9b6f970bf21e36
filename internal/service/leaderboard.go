package service

import (
	"context"
	"fmt"

	"github.com/dtroode/jecnagames-server/internal/leaderboard"
	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

// Leaderboard ranks users from a snapshot of the user store.
type Leaderboard struct {
	userStore    model.UserStore
	defaultLimit int
	maxLimit     int
	logger       *logger.Logger
}

// NewLeaderboard creates a new Leaderboard service.
//
// Parameters:
//   - userStore: Storage the rankings are computed from
//   - defaultLimit: Player count when the caller gives none (< 1 means leaderboard.DefaultLimit)
//   - maxLimit: Upper bound for a requested player count
//   - logger: Logger instance
func NewLeaderboard(userStore model.UserStore, defaultLimit, maxLimit int, logger *logger.Logger) *Leaderboard {
	if defaultLimit < 1 {
		defaultLimit = leaderboard.DefaultLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Leaderboard{
		userStore:    userStore,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// Players returns the top players. A non-positive limit selects the default,
// larger ones are capped.
func (l *Leaderboard) Players(ctx context.Context, limit int) ([]model.PlayerEntry, error) {
	switch {
	case limit <= 0:
		limit = l.defaultLimit
	case limit > l.maxLimit:
		limit = l.maxLimit
	}

	users, err := l.userStore.List(ctx)
	if err != nil {
		l.logger.Error("Leaderboard service: failed to list users",
			"error", err.Error())
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return leaderboard.Players(users, limit), nil
}

// Classes aggregates users by class, best total first.
func (l *Leaderboard) Classes(ctx context.Context) ([]model.ClassEntry, error) {
	users, err := l.userStore.List(ctx)
	if err != nil {
		l.logger.Error("Leaderboard service: failed to list users",
			"error", err.Error())
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return leaderboard.Classes(users), nil
}
