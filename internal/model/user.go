package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// GetByLogin looks the user up by email or username.
	GetByLogin(ctx context.Context, identifier string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// User represents a registered player.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Class        *string
	Stats        Stats
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Stats holds the running counters derived from a user's scores.
type Stats struct {
	TotalGames int
	Wins       int
	Streak     int
	BestStreak int
	Score      int64
}

// HasClass reports whether the user belongs to a non-empty class.
func (u User) HasClass() bool {
	return u.Class != nil && *u.Class != ""
}

// RegisterParams contains parameters to register a user.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	Class    *string
}
