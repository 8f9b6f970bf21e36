package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

type registerRequest struct {
	Username string  `json:"username" validate:"required,max=32"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Class    *string `json:"class" validate:"omitempty,max=16"`
}

// loginRequest accepts the identifier under "identifier", or the legacy
// "email" field which may hold either an email or a username.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password" validate:"required"`
}

func (r loginRequest) identifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Email != "":
		return r.Email
	default:
		return r.Username
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// submitScoreRequest takes points from "points", falling back to "score".
type submitScoreRequest struct {
	Game    string          `json:"game" validate:"required"`
	Won     bool            `json:"won"`
	Points  *int64          `json:"points"`
	Score   *int64          `json:"score"`
	Details json.RawMessage `json:"details"`
}

func (r submitScoreRequest) points() (int64, bool) {
	switch {
	case r.Points != nil:
		return *r.Points, true
	case r.Score != nil:
		return *r.Score, true
	default:
		return 0, false
	}
}

type statsResponse struct {
	TotalGames int   `json:"totalGames"`
	Wins       int   `json:"wins"`
	Streak     int   `json:"streak"`
	BestStreak int   `json:"bestStreak"`
	Score      int64 `json:"score"`
}

type userResponse struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Class     *string       `json:"class"`
	Stats     statsResponse `json:"stats"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Class:     u.Class,
		Stats:     statsResponse(u.Stats),
		CreatedAt: u.CreatedAt.UTC(),
	}
}

type sessionResponse struct {
	User         *userResponse `json:"user,omitempty"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

type scoreResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"userId"`
	Game      string          `json:"game"`
	Won       bool            `json:"won"`
	Points    int64           `json:"points"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newScoreResponse(s model.Score) scoreResponse {
	return scoreResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Game:      s.Game,
		Won:       s.Won,
		Points:    s.Points,
		Details:   s.Details,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

type gameStatusResponse struct {
	Played bool `json:"played"`
}

type playerEntryResponse struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Class    *string `json:"class"`
	Score    int64   `json:"score"`
	Wins     int     `json:"wins"`
	Streak   int     `json:"streak"`
}

type classEntryResponse struct {
	Rank       int    `json:"rank"`
	Class      string `json:"class"`
	TotalScore int64  `json:"totalScore"`
	AvgScore   int64  `json:"avgScore"`
	Players    int    `json:"players"`
}
