package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.ScoreStore = (*ScoreRepository)(nil)

// ScoreRepository appends scores to the shared DB in insertion order.
type ScoreRepository struct {
	db *DB
}

// NewScoreRepository creates a score store backed by db.
func NewScoreRepository(db *DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Record appends the score and applies the stats update to its owner under
// the DB lock.
//
// Returns:
//   - model.Score: The stored score with ID and CreatedAt filled in
//   - error: A user not found error when the owner does not exist
func (r *ScoreRepository) Record(ctx context.Context, score model.Score, update model.StatsUpdate) (model.Score, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = r.db.now()
	}

	if score.UserID != nil {
		user, ok := r.db.users[*score.UserID]
		if !ok {
			return model.Score{}, model.NewErrUserNotFound(score.UserID.String())
		}
		if update != nil {
			user.Stats = update(user.Stats)
			user.UpdatedAt = r.db.now()
			r.db.users[user.ID] = user
		}
	}

	score = cloneScore(score)
	r.db.scores = append(r.db.scores, score)

	return cloneScore(score), nil
}

// ListByUser returns every score of the user, newest first.
func (r *ScoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	return r.list(userID, func(model.Score) bool { return true }), nil
}

// ListByUserBetween returns the user's scores created in [from, to), newest first.
func (r *ScoreRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Score, error) {
	return r.list(userID, func(s model.Score) bool {
		return !s.CreatedAt.Before(from) && s.CreatedAt.Before(to)
	}), nil
}

func (r *ScoreRepository) list(userID uuid.UUID, keep func(model.Score) bool) []model.Score {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	scores := make([]model.Score, 0)
	for i := len(r.db.scores) - 1; i >= 0; i-- {
		s := r.db.scores[i]
		if s.UserID == nil || *s.UserID != userID || !keep(s) {
			continue
		}
		scores = append(scores, cloneScore(s))
	}
	// Walked backwards, so equal timestamps keep newest-inserted first.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CreatedAt.After(scores[j].CreatedAt)
	})
	return scores
}
