package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

// ScoreService defines score submission and history operations.
type ScoreService interface {
	Submit(ctx context.Context, params model.SubmitScoreParams) (model.Score, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error)
	DailyStatus(ctx context.Context, userID *uuid.UUID) (map[string]model.GameStatus, error)
}

// Score handles HTTP endpoints for scores and daily status.
type Score struct {
	scoreService   ScoreService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewScore creates a new Score handler.
func NewScore(scoreService ScoreService, contextManager model.ContextManager, logger *logger.Logger) *Score {
	return &Score{
		scoreService:   scoreService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Submit records a score for the caller, or anonymously without a token.
func (h *Score) Submit(c echo.Context) error {
	var req submitScoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	points, ok := req.points()
	if !ok {
		return model.NewErrMissingField("points")
	}

	ctx := c.Request().Context()
	params := model.SubmitScoreParams{
		Game:    req.Game,
		Won:     req.Won,
		Points:  points,
		Details: req.Details,
	}
	if userID, ok := h.contextManager.GetUserIDFromContext(ctx); ok {
		params.UserID = &userID
	}

	score, err := h.scoreService.Submit(ctx, params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newScoreResponse(score))
}

// List returns the caller's scores, newest first.
func (h *Score) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return model.NewErrUnauthorized()
	}

	scores, err := h.scoreService.ListForUser(ctx, userID)
	if err != nil {
		return err
	}

	resp := make([]scoreResponse, 0, len(scores))
	for _, s := range scores {
		resp = append(resp, newScoreResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Score) Daily(c echo.Context) error {
	ctx := c.Request().Context()

	var userID *uuid.UUID
	if id, ok := h.contextManager.GetUserIDFromContext(ctx); ok {
		userID = &id
	}

	status, err := h.scoreService.DailyStatus(ctx, userID)
	if err != nil {
		return err
	}

	resp := make(map[string]gameStatusResponse, len(status))
	for game, st := range status {
		resp[game] = gameStatusResponse{Played: st.Played}
	}
	return c.JSON(http.StatusOK, resp)
}
