package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/jecnagames-server/internal/logger"
)

// Logging logs every HTTP request with its outcome.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, status and duration for each request.
// Handler errors are resolved through the echo error handler first so the
// logged status is the one sent to the client.
func (l *Logging) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		args := []any{
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		if status >= 500 {
			if err != nil {
				args = append(args, "error", err.Error())
			}
			l.logger.Error("HTTP request failed", args...)
			return nil
		}
		l.logger.Info("HTTP request completed", args...)
		return nil
	}
}
