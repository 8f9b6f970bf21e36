package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository stores users in the shared DB.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a user store backed by db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. Emails are unique ignoring case, usernames exactly.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.byUsername[user.Username]; ok {
		return model.User{}, model.NewErrUsernameTaken(user.Username)
	}
	if _, ok := r.db.byEmail[emailKey(user.Email)]; ok {
		return model.User{}, model.NewErrEmailTaken(user.Email)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.db.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	user = cloneUser(user)
	r.db.users[user.ID] = user
	r.db.byUsername[user.Username] = user.ID
	r.db.byEmail[emailKey(user.Email)] = user.ID

	return cloneUser(user), nil
}

// GetByID returns the user or model.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return cloneUser(user), nil
}

// GetByLogin tries the identifier as an email first, then as a username.
func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.byEmail[emailKey(identifier)]
	if !ok {
		id, ok = r.db.byUsername[identifier]
	}
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return cloneUser(r.db.users[id]), nil
}

// List returns a snapshot of all users.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
