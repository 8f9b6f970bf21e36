package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	httpcontext "github.com/dtroode/jecnagames-server/internal/api/http/context"
	"github.com/dtroode/jecnagames-server/internal/mocks"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/testutil"
)

func newAuthHandler(t *testing.T) (*mocks.AuthService, *Auth, *httpcontext.Manager) {
	t.Helper()

	svc := mocks.NewAuthService(t)
	manager := httpcontext.NewManager()
	return svc, NewAuth(svc, manager, testutil.MakeNoopLogger()), manager
}

func TestAuth_Register(t *testing.T) {
	userID := uuid.New()
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	user := model.User{
		ID:        userID,
		Username:  "alice",
		Email:     "alice@example.com",
		Class:     strPtr("3.A"),
		CreatedAt: created,
	}
	session := model.Session{AccessToken: "access", RefreshToken: "refresh"}

	tests := []struct {
		name       string
		body       string
		setup      func(svc *mocks.AuthService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"username":"alice","email":"alice@example.com","password":"secret1","class":"3.A"}`,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, model.RegisterParams{
					Username: "alice",
					Email:    "alice@example.com",
					Password: "secret1",
					Class:    strPtr("3.A"),
				}).Return(user, session, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody: `{
				"user": {
					"id": "` + userID.String() + `",
					"username": "alice",
					"email": "alice@example.com",
					"class": "3.A",
					"stats": {"totalGames":0,"wins":0,"streak":0,"bestStreak":0,"score":0},
					"createdAt": "2026-03-01T08:00:00Z"
				},
				"accessToken": "access",
				"refreshToken": "refresh"
			}`,
		},
		{
			name: "username taken",
			body: `{"username":"alice","email":"alice@example.com","password":"secret1"}`,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, mock.Anything).
					Return(model.User{}, model.Session{}, model.NewErrUsernameTaken("alice")).Once()
			},
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"username alice is already taken"}`,
		},
		{
			name:       "invalid email never reaches the service",
			body:       `{"username":"alice","email":"nope","password":"secret1"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"email is invalid: not a valid address"}`,
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"body is invalid: malformed JSON"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, h, _ := newAuthHandler(t)
			if tt.setup != nil {
				tt.setup(svc)
			}
			e := newTestEcho()
			e.POST("/register", h.Register)

			rec := doRequest(e, http.MethodPost, "/register", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAuth_Login(t *testing.T) {
	user := model.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	session := model.Session{AccessToken: "access", RefreshToken: "refresh"}

	tests := []struct {
		name       string
		body       string
		identifier string
		err        error
		wantStatus int
	}{
		{
			name:       "identifier field",
			body:       `{"identifier":"alice","password":"secret1"}`,
			identifier: "alice",
			wantStatus: http.StatusOK,
		},
		{
			name:       "legacy email field holding a username",
			body:       `{"email":"alice","password":"secret1"}`,
			identifier: "alice",
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad credentials",
			body:       `{"email":"alice@example.com","password":"wrong"}`,
			identifier: "alice@example.com",
			err:        model.NewErrInvalidCredentials(),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, h, _ := newAuthHandler(t)
			if tt.err != nil {
				svc.On("Login", mock.Anything, tt.identifier, mock.Anything).
					Return(model.User{}, model.Session{}, tt.err).Once()
			} else {
				svc.On("Login", mock.Anything, tt.identifier, "secret1").
					Return(user, session, nil).Once()
			}
			e := newTestEcho()
			e.POST("/login", h.Login)

			rec := doRequest(e, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.err == nil {
				assert.Contains(t, rec.Body.String(), `"accessToken":"access"`)
			}
		})
	}
}

func TestAuth_RefreshAndLogout(t *testing.T) {
	svc, h, _ := newAuthHandler(t)
	svc.On("Refresh", mock.Anything, "old").
		Return(model.Session{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()
	svc.On("Refresh", mock.Anything, "revoked").
		Return(model.Session{}, model.NewErrInvalidToken()).Once()
	svc.On("Logout", mock.Anything, "r2").Return(nil).Once()

	e := newTestEcho()
	e.POST("/refresh", h.Refresh)
	e.POST("/logout", h.Logout)

	rec := doRequest(e, http.MethodPost, "/refresh", `{"refreshToken":"old"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accessToken":"a2","refreshToken":"r2"}`, rec.Body.String())

	rec = doRequest(e, http.MethodPost, "/refresh", `{"refreshToken":"revoked"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(e, http.MethodPost, "/logout", `{"refreshToken":"r2"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodPost, "/logout", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"refreshToken is required"}`, rec.Body.String())
}

func TestAuth_Me(t *testing.T) {
	userID := uuid.New()
	svc, h, manager := newAuthHandler(t)
	svc.On("GetUser", mock.Anything, userID).
		Return(model.User{ID: userID, Username: "alice"}, nil).Once()

	e := newTestEcho()
	e.GET("/anon/me", h.Me)
	e.GET("/me", h.Me, asUser(manager, userID))

	rec := doRequest(e, http.MethodGet, "/anon/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.Contains(t, rec.Body.String(), `"class":null`)
}
