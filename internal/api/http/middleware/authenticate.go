package middleware

import (
	"context"
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

const userIDContextKey = "user_id"

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects user ID into the request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Required rejects requests without a valid bearer token.
func (m *Authenticate) Required() echo.MiddlewareFunc {
	return m.chain(nil)
}

// Optional lets requests without an Authorization header through anonymously.
// A header that is present must still carry a valid token.
func (m *Authenticate) Optional() echo.MiddlewareFunc {
	return m.chain(func(c echo.Context) bool {
		return c.Request().Header.Get(echo.HeaderAuthorization) == ""
	})
}

func (m *Authenticate) chain(skipper func(c echo.Context) bool) echo.MiddlewareFunc {
	jwt := echojwt.WithConfig(echojwt.Config{
		Skipper:        skipper,
		ContextKey:     userIDContextKey,
		ParseTokenFunc: m.parseToken,
		ErrorHandler:   m.handleError,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwt(m.propagate(next))
	}
}

func (m *Authenticate) parseToken(c echo.Context, token string) (interface{}, error) {
	userID, err := m.tokenService.GetUserID(c.Request().Context(), token)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, model.NewErrInvalidToken()
	}
	return userID, nil
}

func (m *Authenticate) handleError(c echo.Context, err error) error {
	m.logger.Debug("Authenticate middleware: request rejected",
		"path", c.Path(),
		"error", err.Error())

	// Parse failures carry a typed error; anything else means no usable header.
	var typed *model.Error
	if errors.As(err, &typed) {
		return model.NewErrInvalidToken()
	}
	return model.NewErrUnauthorized()
}

// propagate moves the user ID echojwt stored on the echo context into the
// request context, where handlers read it through the ContextManager.
func (m *Authenticate) propagate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if userID, ok := c.Get(userIDContextKey).(uuid.UUID); ok {
			req := c.Request()
			c.SetRequest(req.WithContext(m.contextManager.SetUserIDToContext(req.Context(), userID)))
		}
		return next(c)
	}
}
