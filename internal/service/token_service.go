package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

// TokenService provides high-level operations for issuing, refreshing,
// and revoking tokens. It composes the TokenManager and RefreshTokenStore.
type TokenService struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	refreshTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService. refreshTTL must match the manager's
// refresh token lifetime; it only drives persistence, claims are checked by the manager.
func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, refreshTTL time.Duration, logger *logger.Logger) *TokenService {
	return &TokenService{
		manager:    manager,
		store:      store,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue creates a fresh access and refresh token pair for the user.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (model.Session, error) {
	return s.issue(ctx, userID, nil)
}

func (s *TokenService) issue(ctx context.Context, userID uuid.UUID, rotatedFrom *string) (model.Session, error) {
	access, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	now := s.now()
	rt := model.RefreshToken{
		ID:             uuid.New(),
		JTI:            jti,
		UserID:         userID,
		TokenHash:      hashRefresh(refresh),
		IssuedAt:       now,
		ExpiresAt:      now.Add(s.refreshTTL),
		RotatedFromJTI: rotatedFrom,
	}
	if err := s.store.Create(ctx, rt); err != nil {
		return model.Session{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return model.Session{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair issued.
// Presenting a token that was already revoked or rotated is treated as reuse
// and revokes every refresh token of the user.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (model.Session, error) {
	userID, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		s.logger.Debug("Token service: refresh token rejected",
			"error", err.Error())
		return model.Session{}, model.NewErrInvalidToken()
	}

	rt, err := s.store.GetByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Session{}, model.NewErrInvalidToken()
		}
		return model.Session{}, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := validateRecord(rt, hashRefresh(presentedRefresh), s.now()); err != nil {
		s.logger.Info("Token service: refresh token refused",
			"user_id", userID.String(),
			"jti", jti,
			"reason", err.Error())
		if errors.Is(err, model.ErrTokenRevoked) {
			s.revokeFamily(ctx, rt.UserID, jti)
		}
		return model.Session{}, err
	}

	revoked, err := s.store.RevokeByJTI(ctx, jti)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}
	if !revoked {
		// A concurrent refresh rotated the same token first.
		s.revokeFamily(ctx, rt.UserID, jti)
		return model.Session{}, model.ErrTokenRevoked
	}

	rotatedFrom := rt.JTI
	session, err := s.issue(ctx, userID, &rotatedFrom)
	if err != nil {
		return model.Session{}, err
	}

	s.logger.Debug("Token service: refresh token rotated",
		"user_id", userID.String())

	return session, nil
}

func (s *TokenService) revokeFamily(ctx context.Context, userID uuid.UUID, jti string) {
	s.logger.Info("Token service: refresh token reuse detected, revoking all sessions",
		"user_id", userID.String(),
		"jti", jti)

	if err := s.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Error("Token service: failed to revoke sessions after reuse",
			"user_id", userID.String(),
			"error", err.Error())
	}
}

// RevokeByToken revokes the presented refresh token. Revoking a token that is
// already revoked is not an error.
func (s *TokenService) RevokeByToken(ctx context.Context, presentedRefresh string) error {
	_, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return model.NewErrInvalidToken()
	}
	if _, err := s.store.RevokeByJTI(ctx, jti); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every live refresh token of the user.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// GetUserID resolves the user an access token was issued to.
func (s *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, model.NewErrInvalidToken()
	}
	return userID, nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func validateRecord(rt model.RefreshToken, presentedHash []byte, now time.Time) error {
	if rt.RevokedAt != nil {
		return model.ErrTokenRevoked
	}
	if now.After(rt.ExpiresAt) {
		return model.ErrTokenExpired
	}
	if subtle.ConstantTimeCompare(rt.TokenHash, presentedHash) != 1 {
		return model.ErrTokenMismatch
	}
	return nil
}
