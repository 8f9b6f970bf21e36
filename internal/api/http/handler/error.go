package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

const internalErrorMessage = "internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to the HTTP status and message sent to the client.
// Anything untyped is reported as an internal error without detail.
func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	var typed *model.Error
	if !errors.As(err, &typed) {
		if errors.Is(err, model.ErrNotFound) {
			return http.StatusNotFound, "not found"
		}
		return http.StatusInternalServerError, internalErrorMessage
	}

	switch {
	case errors.Is(typed, model.ErrValidation):
		return http.StatusBadRequest, typed.Message
	case errors.Is(typed, model.ErrConflict):
		return http.StatusConflict, typed.Message
	case errors.Is(typed, model.ErrAuthentication), errors.Is(typed, model.ErrUnauthorized):
		return http.StatusUnauthorized, typed.Message
	case errors.Is(typed, model.ErrNotFound):
		return http.StatusNotFound, typed.Message
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// NewErrorHandler returns the echo error handler writing {"error": message} bodies.
func NewErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("HTTP handler: request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err.Error())
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, errorResponse{Error: message})
		}
		if writeErr != nil {
			logger.Error("HTTP handler: failed to write error response",
				"error", writeErr.Error())
		}
	}
}
