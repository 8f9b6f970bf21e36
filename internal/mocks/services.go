package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/jecnagames-server/internal/model"
)

// AuthService is a mock type for the handler.AuthService type.
type AuthService struct {
	mock.Mock
}

func NewAuthService(t testingT) *AuthService {
	m := &AuthService{}
	register(&m.Mock, t)
	return m
}

func (_m *AuthService) Register(ctx context.Context, params model.RegisterParams) (model.User, model.Session, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.User), ret.Get(1).(model.Session), ret.Error(2)
}

func (_m *AuthService) Login(ctx context.Context, identifier, password string) (model.User, model.Session, error) {
	ret := _m.Called(ctx, identifier, password)
	return ret.Get(0).(model.User), ret.Get(1).(model.Session), ret.Error(2)
}

func (_m *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, userID)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *AuthService) Refresh(ctx context.Context, refreshToken string) (model.Session, error) {
	ret := _m.Called(ctx, refreshToken)
	return ret.Get(0).(model.Session), ret.Error(1)
}

func (_m *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return _m.Called(ctx, refreshToken).Error(0)
}

// ScoreService is a mock type for the handler.ScoreService type.
type ScoreService struct {
	mock.Mock
}

func NewScoreService(t testingT) *ScoreService {
	m := &ScoreService{}
	register(&m.Mock, t)
	return m
}

func (_m *ScoreService) Submit(ctx context.Context, params model.SubmitScoreParams) (model.Score, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.Score), ret.Error(1)
}

func (_m *ScoreService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	ret := _m.Called(ctx, userID)
	var r0 []model.Score
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Score)
	}
	return r0, ret.Error(1)
}

func (_m *ScoreService) DailyStatus(ctx context.Context, userID *uuid.UUID) (map[string]model.GameStatus, error) {
	ret := _m.Called(ctx, userID)
	var r0 map[string]model.GameStatus
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]model.GameStatus)
	}
	return r0, ret.Error(1)
}

// LeaderboardService is a mock type for the handler.LeaderboardService type.
type LeaderboardService struct {
	mock.Mock
}

func NewLeaderboardService(t testingT) *LeaderboardService {
	m := &LeaderboardService{}
	register(&m.Mock, t)
	return m
}

func (_m *LeaderboardService) Players(ctx context.Context, limit int) ([]model.PlayerEntry, error) {
	ret := _m.Called(ctx, limit)
	var r0 []model.PlayerEntry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.PlayerEntry)
	}
	return r0, ret.Error(1)
}

func (_m *LeaderboardService) Classes(ctx context.Context) ([]model.ClassEntry, error) {
	ret := _m.Called(ctx)
	var r0 []model.ClassEntry
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ClassEntry)
	}
	return r0, ret.Error(1)
}

// TokenService is a mock type for the middleware.TokenService type.
type TokenService struct {
	mock.Mock
}

func NewTokenService(t testingT) *TokenService {
	m := &TokenService{}
	register(&m.Mock, t)
	return m
}

func (_m *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(uuid.UUID), ret.Error(1)
}
