package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, class,
	total_games, wins, streak, best_streak, score, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type UserRepository struct {
	db *Connection
}

// NewUserRepository creates a user store on db.
func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		user      model.User
		id        string
		class     sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&id, &user.Username, &user.Email, &user.PasswordHash, &class,
		&user.Stats.TotalGames, &user.Stats.Wins, &user.Stats.Streak, &user.Stats.BestStreak, &user.Stats.Score,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user id: %w", err)
	}
	if class.Valid {
		c := class.String
		user.Class = &c
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	const query = `INSERT INTO users (id, username, email, password_hash, class, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt

	var class sql.NullString
	if user.Class != nil {
		class = sql.NullString{String: *user.Class, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(), user.Username, user.Email, user.PasswordHash, class,
		toMillis(user.CreatedAt), toMillis(user.UpdatedAt),
	)
	if err != nil {
		if column, ok := uniqueViolation(err); ok {
			if strings.HasSuffix(column, "email") {
				return model.User{}, model.NewErrEmailTaken(user.Email)
			}
			return model.User{}, model.NewErrUsernameTaken(user.Username)
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	user.Stats = model.Stats{}
	user.CreatedAt = fromMillis(toMillis(user.CreatedAt))
	user.UpdatedAt = user.CreatedAt
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE email = LOWER(?1) OR username = ?1
			  ORDER BY (email = LOWER(?1)) DESC
			  LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by login: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
