package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.ScoreStore = (*ScoreRepository)(nil)

// ScoreRepository stores scores in postgres and folds stats into the users table.
type ScoreRepository struct {
	db *Connection
}

// NewScoreRepository creates a score store on top of an open connection.
func NewScoreRepository(db *Connection) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Record locks the owner row for the duration of the transaction, so
// concurrent submissions for one user apply their stat updates in sequence.
func (r *ScoreRepository) Record(ctx context.Context, score model.Score, update model.StatsUpdate) (model.Score, error) {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Score{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if score.UserID != nil {
		if err := applyStats(ctx, tx, *score.UserID, update); err != nil {
			return model.Score{}, err
		}
	}

	const insert = `INSERT INTO scores (id, user_id, game, won, points, details, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, insert,
		score.ID, score.UserID, score.Game, score.Won, score.Points, detailsArg(score.Details), score.CreatedAt,
	); err != nil {
		return model.Score{}, fmt.Errorf("failed to insert score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Score{}, fmt.Errorf("failed to commit score: %w", err)
	}

	return score, nil
}

func applyStats(ctx context.Context, tx pgx.Tx, userID uuid.UUID, update model.StatsUpdate) error {
	const selectQuery = `SELECT total_games, wins, streak, best_streak, score
			  FROM users WHERE id = $1 FOR UPDATE`

	var st model.Stats
	err := tx.QueryRow(ctx, selectQuery, userID).Scan(
		&st.TotalGames, &st.Wins, &st.Streak, &st.BestStreak, &st.Score,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewErrUserNotFound(userID.String())
		}
		return fmt.Errorf("failed to lock user stats: %w", err)
	}

	if update == nil {
		return nil
	}
	st = update(st)

	const updateQuery = `UPDATE users
			  SET total_games = $2, wins = $3, streak = $4, best_streak = $5, score = $6, updated_at = NOW()
			  WHERE id = $1`
	if _, err := tx.Exec(ctx, updateQuery,
		userID, st.TotalGames, st.Wins, st.Streak, st.BestStreak, st.Score,
	); err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}

	return nil
}

// ListByUser returns the user's scores, newest first. Rows sharing a
// timestamp come back in reverse insertion order.
func (r *ScoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	const query = `SELECT id, user_id, game, won, points, details, created_at
			  FROM scores WHERE user_id = $1
			  ORDER BY created_at DESC, seq DESC`

	return r.list(ctx, query, userID)
}

// ListByUserBetween returns the user's scores created in [from, to), newest first.
func (r *ScoreRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Score, error) {
	const query = `SELECT id, user_id, game, won, points, details, created_at
			  FROM scores WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
			  ORDER BY created_at DESC, seq DESC`

	return r.list(ctx, query, userID, from, to)
}

func (r *ScoreRepository) list(ctx context.Context, query string, args ...any) ([]model.Score, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]model.Score, 0)
	for rows.Next() {
		var (
			s       model.Score
			details []byte
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Game, &s.Won, &s.Points, &details, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if len(details) > 0 {
			s.Details = details
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}

	return scores, nil
}

func detailsArg(details []byte) any {
	if len(details) == 0 {
		return nil
	}
	return details
}
