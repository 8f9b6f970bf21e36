package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/dtroode/jecnagames-server/internal/api/http/handler"
	"github.com/dtroode/jecnagames-server/internal/api/http/middleware"
	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
)

// Router wires the HTTP handlers, middleware and error mapping onto echo.
type Router struct {
	authService        handler.AuthService
	scoreService       handler.ScoreService
	leaderboardService handler.LeaderboardService
	tokenService       middleware.TokenService
	contextManager     model.ContextManager
	logger             *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	scoreService handler.ScoreService,
	leaderboardService handler.LeaderboardService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:        authService,
		scoreService:       scoreService,
		leaderboardService: leaderboardService,
		tokenService:       tokenService,
		contextManager:     contextManager,
		logger:             logger,
	}
}

// Register builds the echo instance serving every route.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewErrorHandler(r.logger)

	logging := middleware.NewLogging(r.logger)
	e.Use(echomiddleware.Recover())
	e.Use(logging.Handle)
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("64K"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)
	api := e.Group("/api")
	r.registerAuthRoutes(api, authenticate)
	r.registerScoreRoutes(api, authenticate)
	r.registerLeaderboardRoutes(api)

	return e
}

func (r *Router) registerAuthRoutes(g *echo.Group, authenticate *middleware.Authenticate) {
	h := handler.NewAuth(r.authService, r.contextManager, r.logger)

	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/token/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, authenticate.Required())
}

func (r *Router) registerScoreRoutes(g *echo.Group, authenticate *middleware.Authenticate) {
	h := handler.NewScore(r.scoreService, r.contextManager, r.logger)

	g.POST("/scores", h.Submit, authenticate.Optional())
	g.GET("/scores", h.List, authenticate.Required())
	g.GET("/daily", h.Daily, authenticate.Optional())
}

func (r *Router) registerLeaderboardRoutes(g *echo.Group) {
	h := handler.NewLeaderboard(r.leaderboardService, r.logger)

	g.GET("/leaderboard", h.Get)
}
