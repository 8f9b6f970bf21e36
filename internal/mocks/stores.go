package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/jecnagames-server/internal/model"
)

// UserStore is a mock type for the model.UserStore type.
type UserStore struct {
	mock.Mock
}

func NewUserStore(t testingT) *UserStore {
	m := &UserStore{}
	register(&m.Mock, t)
	return m
}

func (_m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := _m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByLogin(ctx context.Context, identifier string) (model.User, error) {
	ret := _m.Called(ctx, identifier)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) List(ctx context.Context) ([]model.User, error) {
	ret := _m.Called(ctx)
	var r0 []model.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.User)
	}
	return r0, ret.Error(1)
}

// ScoreStore is a mock type for the model.ScoreStore type.
type ScoreStore struct {
	mock.Mock
}

func NewScoreStore(t testingT) *ScoreStore {
	m := &ScoreStore{}
	register(&m.Mock, t)
	return m
}

func (_m *ScoreStore) Record(ctx context.Context, score model.Score, update model.StatsUpdate) (model.Score, error) {
	ret := _m.Called(ctx, score, update)
	return ret.Get(0).(model.Score), ret.Error(1)
}

func (_m *ScoreStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	ret := _m.Called(ctx, userID)
	var r0 []model.Score
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Score)
	}
	return r0, ret.Error(1)
}

func (_m *ScoreStore) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Score, error) {
	ret := _m.Called(ctx, userID, from, to)
	var r0 []model.Score
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Score)
	}
	return r0, ret.Error(1)
}

// RefreshTokenStore is a mock type for the model.RefreshTokenStore type.
type RefreshTokenStore struct {
	mock.Mock
}

func NewRefreshTokenStore(t testingT) *RefreshTokenStore {
	m := &RefreshTokenStore{}
	register(&m.Mock, t)
	return m
}

func (_m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	return _m.Called(ctx, token).Error(0)
}

func (_m *RefreshTokenStore) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	ret := _m.Called(ctx, jti)
	return ret.Get(0).(model.RefreshToken), ret.Error(1)
}

func (_m *RefreshTokenStore) RevokeByJTI(ctx context.Context, jti string) (bool, error) {
	ret := _m.Called(ctx, jti)
	return ret.Bool(0), ret.Error(1)
}

func (_m *RefreshTokenStore) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	return _m.Called(ctx, userID).Error(0)
}
