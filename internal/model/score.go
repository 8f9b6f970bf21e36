package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StatsUpdate computes the next stats of a user from its current ones.
// Stores call it inside their atomic section, so it must be pure.
type StatsUpdate func(prior Stats) Stats

// ScoreStore defines persistence operations for scores.
type ScoreStore interface {
	// Record persists score. When score.UserID is set, the owner's stats are
	// replaced with update(current) in the same atomic unit; an unknown owner
	// yields ErrNotFound and nothing is persisted.
	Record(ctx context.Context, score Score, update StatsUpdate) (Score, error)
	// ListByUser returns the user's scores, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Score, error)
	// ListByUserBetween returns the user's scores created in [from, to), newest first.
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Score, error)
}

// Score represents one completed game attempt.
type Score struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Game      string
	Won       bool
	Points    int64
	Details   json.RawMessage
	CreatedAt time.Time
}

// SubmitScoreParams contains parameters to submit a score.
// A nil UserID means an anonymous submission.
type SubmitScoreParams struct {
	UserID  *uuid.UUID
	Game    string
	Won     bool
	Points  int64
	Details json.RawMessage
}

// GameStatus is the per-game daily status.
type GameStatus struct {
	Played bool
}
