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

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

// NewRefreshTokenRepository creates a refresh token store on db.
func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (
			id, jti, user_id, token_hash, issued_at, expires_at, revoked_at, rotated_from_jti
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	var revokedAt sql.NullInt64
	if token.RevokedAt != nil {
		revokedAt = sql.NullInt64{Int64: toMillis(*token.RevokedAt), Valid: true}
	}
	var rotatedFrom sql.NullString
	if token.RotatedFromJTI != nil {
		rotatedFrom = sql.NullString{String: *token.RotatedFromJTI, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		token.ID.String(), token.JTI, token.UserID.String(), token.TokenHash,
		toMillis(token.IssuedAt), toMillis(token.ExpiresAt), revokedAt, rotatedFrom,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	const query = `SELECT id, jti, user_id, token_hash, issued_at, expires_at, revoked_at, rotated_from_jti
		FROM refresh_tokens WHERE jti = ?`

	var (
		rt          model.RefreshToken
		id, userID  string
		issuedAt    int64
		expiresAt   int64
		revokedAt   sql.NullInt64
		rotatedFrom sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, jti).Scan(
		&id, &rt.JTI, &userID, &rt.TokenHash, &issuedAt, &expiresAt, &revokedAt, &rotatedFrom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by jti: %w", err)
	}

	if rt.ID, err = uuid.Parse(id); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to parse refresh token id: %w", err)
	}
	if rt.UserID, err = uuid.Parse(userID); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to parse refresh token owner: %w", err)
	}
	rt.IssuedAt = fromMillis(issuedAt)
	rt.ExpiresAt = fromMillis(expiresAt)
	if revokedAt.Valid {
		t := fromMillis(revokedAt.Int64)
		rt.RevokedAt = &t
	}
	if rotatedFrom.Valid {
		s := rotatedFrom.String
		rt.RotatedFromJTI = &s
	}

	return rt, nil
}

// RevokeByJTI reports whether a live row was updated.
func (r *RefreshTokenRepository) RevokeByJTI(ctx context.Context, jti string) (bool, error) {
	const query = `UPDATE refresh_tokens SET revoked_at = ? WHERE jti = ? AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, toMillis(time.Now()), jti)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read revoked rows: %w", err)
	}
	return n == 1, nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, toMillis(time.Now()), userID.String()); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return nil
}
