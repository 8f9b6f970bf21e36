package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.ScoreStore = (*ScoreRepository)(nil)

const scoreColumns = `id, user_id, game, won, points, details, created_at`

type ScoreRepository struct {
	db *Connection
}

// NewScoreRepository creates a score store on db.
func NewScoreRepository(db *Connection) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Record(ctx context.Context, score model.Score, update model.StatsUpdate) (model.Score, error) {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Score{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var userID sql.NullString
	if score.UserID != nil {
		userID = sql.NullString{String: score.UserID.String(), Valid: true}
		if err := applyStats(ctx, tx, *score.UserID, update); err != nil {
			return model.Score{}, err
		}
	}

	var details sql.NullString
	if len(score.Details) > 0 {
		details = sql.NullString{String: string(score.Details), Valid: true}
	}

	const insert = `INSERT INTO scores (` + scoreColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert,
		score.ID.String(), userID, score.Game, score.Won, score.Points, details, toMillis(score.CreatedAt),
	); err != nil {
		return model.Score{}, fmt.Errorf("failed to insert score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Score{}, fmt.Errorf("failed to commit score: %w", err)
	}

	score.CreatedAt = fromMillis(toMillis(score.CreatedAt))
	return score, nil
}

func applyStats(ctx context.Context, tx *sql.Tx, userID uuid.UUID, update model.StatsUpdate) error {
	const selectQuery = `SELECT total_games, wins, streak, best_streak, score FROM users WHERE id = ?`

	var st model.Stats
	err := tx.QueryRowContext(ctx, selectQuery, userID.String()).Scan(
		&st.TotalGames, &st.Wins, &st.Streak, &st.BestStreak, &st.Score,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewErrUserNotFound(userID.String())
		}
		return fmt.Errorf("failed to read user stats: %w", err)
	}

	if update == nil {
		return nil
	}
	st = update(st)

	const updateQuery = `UPDATE users
			  SET total_games = ?, wins = ?, streak = ?, best_streak = ?, score = ?, updated_at = ?
			  WHERE id = ?`
	if _, err := tx.ExecContext(ctx, updateQuery,
		st.TotalGames, st.Wins, st.Streak, st.BestStreak, st.Score, toMillis(time.Now()), userID.String(),
	); err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}

	return nil
}

// ListByUser returns the user's scores, newest first, ties broken by rowid.
func (r *ScoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	const query = `SELECT ` + scoreColumns + ` FROM scores WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`

	return r.list(ctx, query, userID.String())
}

func (r *ScoreRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Score, error) {
	const query = `SELECT ` + scoreColumns + ` FROM scores
			  WHERE user_id = ? AND created_at >= ? AND created_at < ?
			  ORDER BY created_at DESC, rowid DESC`

	return r.list(ctx, query, userID.String(), toMillis(from), toMillis(to))
}

func (r *ScoreRepository) list(ctx context.Context, query string, args ...any) ([]model.Score, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]model.Score, 0)
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}

	return scores, nil
}

func scanScore(row rowScanner) (model.Score, error) {
	var (
		s         model.Score
		id        string
		userID    sql.NullString
		details   sql.NullString
		createdAt int64
	)
	if err := row.Scan(&id, &userID, &s.Game, &s.Won, &s.Points, &details, &createdAt); err != nil {
		return model.Score{}, fmt.Errorf("failed to scan score: %w", err)
	}

	var err error
	if s.ID, err = uuid.Parse(id); err != nil {
		return model.Score{}, fmt.Errorf("failed to parse score id: %w", err)
	}
	if userID.Valid {
		uid, err := uuid.Parse(userID.String)
		if err != nil {
			return model.Score{}, fmt.Errorf("failed to parse score owner: %w", err)
		}
		s.UserID = &uid
	}
	if details.Valid {
		s.Details = []byte(details.String)
	}
	s.CreatedAt = fromMillis(createdAt)

	return s, nil
}
