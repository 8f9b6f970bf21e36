package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/daily"
	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/stats"
)

// DefaultMaxPoints caps the points of a single submission when no limit is configured.
const DefaultMaxPoints int64 = 1_000_000

// Score accepts game results and answers per-user history questions.
type Score struct {
	scoreStore model.ScoreStore
	games      model.GameSet
	location   *time.Location
	maxPoints  int64
	logger     *logger.Logger
	now        func() time.Time
}

// NewScore creates a new Score service.
//
// Parameters:
//   - scoreStore: Storage recording scores and folding stats atomically
//   - games: The game keys a submission may name
//   - location: Timezone the daily window is computed in (nil means UTC)
//   - maxPoints: Upper bound for the points of one submission (<= 0 means DefaultMaxPoints)
//   - logger: Logger instance
func NewScore(
	scoreStore model.ScoreStore,
	games model.GameSet,
	location *time.Location,
	maxPoints int64,
	logger *logger.Logger,
) *Score {
	if location == nil {
		location = time.UTC
	}
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &Score{
		scoreStore: scoreStore,
		games:      games,
		location:   location,
		maxPoints:  maxPoints,
		logger:     logger,
		now:        time.Now,
	}
}

// Games returns the configured game keys.
func (s *Score) Games() model.GameSet {
	return s.games
}

// Submit records a score. For an authenticated caller the owner's stats are
// folded in the same atomic unit as the insert.
func (s *Score) Submit(ctx context.Context, params model.SubmitScoreParams) (model.Score, error) {
	if params.Game == "" {
		return model.Score{}, model.NewErrMissingField("game")
	}
	if !s.games.Contains(params.Game) {
		return model.Score{}, model.NewErrUnknownGame(params.Game)
	}
	if params.Points < 0 {
		return model.Score{}, model.NewErrNegativePoints(params.Points)
	}
	if params.Points > s.maxPoints {
		return model.Score{}, model.NewErrInvalidField("points", fmt.Sprintf("must not exceed %d", s.maxPoints))
	}

	score := model.Score{
		ID:        uuid.New(),
		UserID:    params.UserID,
		Game:      params.Game,
		Won:       params.Won,
		Points:    params.Points,
		Details:   params.Details,
		CreatedAt: s.now().UTC(),
	}

	saved, err := s.scoreStore.Record(ctx, score, stats.Updater(params.Won, params.Points))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Info("Score service: submission for unknown user",
				"user_id", userIDAttr(params.UserID))
			return model.Score{}, err
		}
		s.logger.Error("Score service: failed to record score",
			"user_id", userIDAttr(params.UserID),
			"game", params.Game,
			"error", err.Error())
		return model.Score{}, fmt.Errorf("failed to record score: %w", err)
	}

	s.logger.Debug("Score service: score recorded",
		"score_id", saved.ID.String(),
		"user_id", userIDAttr(params.UserID),
		"game", saved.Game,
		"won", saved.Won,
		"points", saved.Points)

	return saved, nil
}

// ListForUser returns the user's scores, newest first.
func (s *Score) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	scores, err := s.scoreStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Score service: failed to list scores",
			"user_id", userID.String(),
			"error", err.Error())
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return scores, nil
}

// DailyStatus reports which games the caller already played today.
// Anonymous callers get every game unplayed.
func (s *Score) DailyStatus(ctx context.Context, userID *uuid.UUID) (map[string]model.GameStatus, error) {
	asOf := s.now()

	var history []model.Score
	if userID != nil {
		from, to := daily.Window(asOf, s.location)
		scores, err := s.scoreStore.ListByUserBetween(ctx, *userID, from, to)
		if err != nil {
			s.logger.Error("Score service: failed to load today's scores",
				"user_id", userID.String(),
				"error", err.Error())
			return nil, fmt.Errorf("failed to load today's scores: %w", err)
		}
		history = scores
	}

	return daily.Status(history, userID, s.games, asOf, s.location), nil
}

func userIDAttr(id *uuid.UUID) string {
	if id == nil {
		return "anonymous"
	}
	return id.String()
}
