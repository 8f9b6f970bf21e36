package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type userRecord struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"`
	Class        *string     `json:"class,omitempty"`
	Stats        statsRecord `json:"stats"`
	CreatedAt    int64       `json:"createdAt"`
	UpdatedAt    int64       `json:"updatedAt"`
}

type statsRecord struct {
	TotalGames int   `json:"totalGames"`
	Wins       int   `json:"wins"`
	Streak     int   `json:"streak"`
	BestStreak int   `json:"bestStreak"`
	Score      int64 `json:"score"`
}

func toUserRecord(u model.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Class:        u.Class,
		Stats:        statsRecord(u.Stats),
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	}
}

func (r userRecord) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Class:        r.Class,
		Stats:        model.Stats(r.Stats),
		CreatedAt:    time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMilli(r.UpdatedAt).UTC(),
	}
}

type UserRepository struct {
	db *Connection
}

// NewUserRepository creates a user store on db.
func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	user.Stats = model.Stats{}

	data, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user: %w", err)
	}

	id := user.ID.String()
	usernameKey := r.db.keys.username(user.Username)
	emailKey := r.db.keys.email(strings.ToLower(user.Email))

	err = r.db.transact(ctx, func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, usernameKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken > 0 {
			return model.NewErrUsernameTaken(user.Username)
		}
		taken, err = tx.Exists(ctx, emailKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken > 0 {
			return model.NewErrEmailTaken(user.Email)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.db.keys.user(id), data, 0)
			pipe.Set(ctx, usernameKey, id, 0)
			pipe.Set(ctx, emailKey, id, 0)
			pipe.SAdd(ctx, r.db.keys.users(), id)
			return nil
		})
		return err
	}, usernameKey, emailKey)
	if err != nil {
		var typed *model.Error
		if errors.As(err, &typed) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return toUserRecord(user).toModel(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := getUser(ctx, r.db.Client, r.db.keys.user(id.String()))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.toModel(), nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (model.User, error) {
	id, err := r.db.Get(ctx, r.db.keys.email(strings.ToLower(identifier))).Result()
	if errors.Is(err, redis.Nil) {
		id, err = r.db.Get(ctx, r.db.keys.username(identifier)).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to resolve login: %w", err)
	}

	user, err := getUser(ctx, r.db.Client, r.db.keys.user(id))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by login: %w", err)
	}
	return user.toModel(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	ids, err := r.db.SMembers(ctx, r.db.keys.users()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	userKeys := make([]string, len(ids))
	for i, id := range ids {
		userKeys[i] = r.db.keys.user(id)
	}
	values, err := r.db.MGet(ctx, userKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make([]model.User, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec userRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, rec.toModel())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

func getUser(ctx context.Context, c getter, key string) (userRecord, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return userRecord{}, model.ErrNotFound
		}
		return userRecord{}, err
	}

	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return userRecord{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return rec, nil
}
