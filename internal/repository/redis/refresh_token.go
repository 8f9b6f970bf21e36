package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

// Tokens outlive their expiry by this much so a late refresh sees "expired"
// rather than "unknown".
const refreshGrace = time.Hour

type refreshTokenRecord struct {
	ID             uuid.UUID `json:"id"`
	JTI            string    `json:"jti"`
	UserID         uuid.UUID `json:"userId"`
	TokenHash      []byte    `json:"tokenHash"`
	IssuedAt       int64     `json:"issuedAt"`
	ExpiresAt      int64     `json:"expiresAt"`
	RevokedAt      *int64    `json:"revokedAt,omitempty"`
	RotatedFromJTI *string   `json:"rotatedFromJti,omitempty"`
}

func (r refreshTokenRecord) toModel() model.RefreshToken {
	rt := model.RefreshToken{
		ID:             r.ID,
		JTI:            r.JTI,
		UserID:         r.UserID,
		TokenHash:      r.TokenHash,
		IssuedAt:       time.UnixMilli(r.IssuedAt).UTC(),
		ExpiresAt:      time.UnixMilli(r.ExpiresAt).UTC(),
		RotatedFromJTI: r.RotatedFromJTI,
	}
	if r.RevokedAt != nil {
		t := time.UnixMilli(*r.RevokedAt).UTC()
		rt.RevokedAt = &t
	}
	return rt
}

type RefreshTokenRepository struct {
	db *Connection
}

// NewRefreshTokenRepository creates a refresh token store on db.
func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	rec := refreshTokenRecord{
		ID:             token.ID,
		JTI:            token.JTI,
		UserID:         token.UserID,
		TokenHash:      token.TokenHash,
		IssuedAt:       token.IssuedAt.UnixMilli(),
		ExpiresAt:      token.ExpiresAt.UnixMilli(),
		RotatedFromJTI: token.RotatedFromJTI,
	}
	if token.RevokedAt != nil {
		ms := token.RevokedAt.UnixMilli()
		rec.RevokedAt = &ms
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode refresh token: %w", err)
	}

	ttl := time.Until(token.ExpiresAt) + refreshGrace
	if ttl < refreshGrace {
		ttl = refreshGrace
	}

	created, err := r.db.SetNX(ctx, r.db.keys.refresh(token.JTI), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	if !created {
		return model.ErrConflict
	}

	if err := r.db.SAdd(ctx, r.db.keys.userRefresh(token.UserID.String()), token.JTI).Err(); err != nil {
		return fmt.Errorf("failed to index refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	rec, err := getRefreshToken(ctx, r.db.Client, r.db.keys.refresh(jti))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.RefreshToken{}, err
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by jti: %w", err)
	}
	return rec.toModel(), nil
}

// RevokeByJTI revokes a live token inside an optimistic transaction and
// reports whether this call did it.
func (r *RefreshTokenRepository) RevokeByJTI(ctx context.Context, jti string) (bool, error) {
	key := r.db.keys.refresh(jti)

	var revoked bool
	err := r.db.transact(ctx, func(tx *redis.Tx) error {
		revoked = false
		rec, err := getRefreshToken(ctx, tx, key)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil
			}
			return err
		}
		if rec.RevokedAt != nil {
			return nil
		}

		now := time.Now().UnixMilli()
		rec.RevokedAt = &now
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode refresh token: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		revoked = true
		return nil
	}, key)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return revoked, nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	jtis, err := r.db.SMembers(ctx, r.db.keys.userRefresh(userID.String())).Result()
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens by user: %w", err)
	}

	for _, jti := range jtis {
		if _, err := r.RevokeByJTI(ctx, jti); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
		}
	}
	return nil
}

func getRefreshToken(ctx context.Context, c getter, key string) (refreshTokenRecord, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return refreshTokenRecord{}, model.ErrNotFound
		}
		return refreshTokenRecord{}, err
	}

	var rec refreshTokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return refreshTokenRecord{}, fmt.Errorf("failed to decode refresh token: %w", err)
	}
	return rec, nil
}
