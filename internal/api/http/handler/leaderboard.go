package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

// LeaderboardService defines ranking operations.
type LeaderboardService interface {
	Players(ctx context.Context, limit int) ([]model.PlayerEntry, error)
	Classes(ctx context.Context) ([]model.ClassEntry, error)
}

type Leaderboard struct {
	leaderboardService LeaderboardService
	logger             *logger.Logger
}

func NewLeaderboard(leaderboardService LeaderboardService, logger *logger.Logger) *Leaderboard {
	return &Leaderboard{
		leaderboardService: leaderboardService,
		logger:             logger,
	}
}

// Get serves ?type=players (default) with an optional ?limit, or ?type=classes.
func (h *Leaderboard) Get(c echo.Context) error {
	ctx := c.Request().Context()

	switch kind := c.QueryParam("type"); kind {
	case "", "players":
		limit := 0
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return model.NewErrInvalidField("limit", "must be a positive integer")
			}
			limit = n
		}

		entries, err := h.leaderboardService.Players(ctx, limit)
		if err != nil {
			return err
		}

		resp := make([]playerEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, playerEntryResponse(e))
		}
		return c.JSON(http.StatusOK, resp)

	case "classes":
		entries, err := h.leaderboardService.Classes(ctx)
		if err != nil {
			return err
		}

		resp := make([]classEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, classEntryResponse(e))
		}
		return c.JSON(http.StatusOK, resp)

	default:
		return model.NewErrInvalidField("type", "must be players or classes")
	}
}
