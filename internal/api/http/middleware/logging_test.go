package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/jecnagames-server/internal/api/http/handler"
	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

func TestLogging_Handle(t *testing.T) {
	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLog    []string
	}{
		{
			name: "success",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			},
			wantStatus: http.StatusNoContent,
			wantLog:    []string{"level=INFO", `msg="HTTP request completed"`, "method=GET", "path=/ping", "status=204"},
		},
		{
			name: "client error is logged with mapped status",
			handler: func(c echo.Context) error {
				return model.NewErrUnknownGame("chess")
			},
			wantStatus: http.StatusBadRequest,
			wantLog:    []string{"level=INFO", "status=400"},
		},
		{
			name: "server error",
			handler: func(c echo.Context) error {
				return errors.New("boom")
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"level=ERROR", `msg="HTTP request failed"`, "status=500", "error=boom"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			lg := logger.NewWithWriter(&buf, 0)

			e := echo.New()
			e.HTTPErrorHandler = handler.NewErrorHandler(logger.NewWithWriter(&bytes.Buffer{}, 0))
			e.Use(NewLogging(lg).Handle)
			e.GET("/ping", tt.handler)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
