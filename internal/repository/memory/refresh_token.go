package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

// RefreshTokenRepository keeps refresh tokens in the shared DB map keyed by JTI.
type RefreshTokenRepository struct {
	db *DB
}

// NewRefreshTokenRepository creates a refresh token store backed by db.
func NewRefreshTokenRepository(db *DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores the token. A duplicate JTI yields model.ErrConflict.
func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.refreshTokens[token.JTI]; ok {
		return model.ErrConflict
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.db.refreshTokens[token.JTI] = token
	return nil
}

// GetByJTI returns a copy of the stored token or model.ErrNotFound.
func (r *RefreshTokenRepository) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	token, ok := r.db.refreshTokens[jti]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return token, nil
}

// RevokeByJTI stamps the token as revoked. It reports false for a missing
// or already revoked token.
func (r *RefreshTokenRepository) RevokeByJTI(ctx context.Context, jti string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	token, ok := r.db.refreshTokens[jti]
	if !ok || token.RevokedAt != nil {
		return false, nil
	}
	now := r.db.now()
	token.RevokedAt = &now
	r.db.refreshTokens[jti] = token
	return true, nil
}

// RevokeAllByUser revokes every live token owned by userID.
func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	for jti, token := range r.db.refreshTokens {
		if token.UserID != userID || token.RevokedAt != nil {
			continue
		}
		revokedAt := now
		token.RevokedAt = &revokedAt
		r.db.refreshTokens[jti] = token
	}
	return nil
}
