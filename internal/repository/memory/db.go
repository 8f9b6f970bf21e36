// Package memory implements the storage port in process memory.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

// DB is the shared state behind the memory repositories.
// A single mutex serializes every mutation, which makes stat updates linearizable.
type DB struct {
	mu sync.RWMutex

	users      map[uuid.UUID]model.User
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID

	scores []model.Score

	refreshTokens map[string]model.RefreshToken

	now func() time.Time
}

// NewDB creates an empty in-process store.
func NewDB() *DB {
	return &DB{
		users:         make(map[uuid.UUID]model.User),
		byUsername:    make(map[string]uuid.UUID),
		byEmail:       make(map[string]uuid.UUID),
		refreshTokens: make(map[string]model.RefreshToken),
		now:           time.Now,
	}
}

// Close is a no-op kept for parity with the persistent backends.
func (db *DB) Close() error {
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func cloneScore(s model.Score) model.Score {
	if s.UserID != nil {
		id := *s.UserID
		s.UserID = &id
	}
	if s.Details != nil {
		s.Details = append([]byte(nil), s.Details...)
	}
	return s
}

func cloneUser(u model.User) model.User {
	if u.Class != nil {
		c := *u.Class
		u.Class = &c
	}
	return u
}
