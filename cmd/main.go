package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	httpctx "github.com/dtroode/jecnagames-server/internal/api/http/context"
	"github.com/dtroode/jecnagames-server/internal/api/http/router"
	httpServer "github.com/dtroode/jecnagames-server/internal/api/http/server"
	"github.com/dtroode/jecnagames-server/internal/config"
	"github.com/dtroode/jecnagames-server/internal/logger"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/password"
	"github.com/dtroode/jecnagames-server/internal/server"
	"github.com/dtroode/jecnagames-server/internal/service"
	"github.com/dtroode/jecnagames-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("failed to load daily timezone", "error", err)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()
	logger.Info("storage ready", "backend", cfg.Storage.Backend)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenService := service.NewTokenService(tokenManager, st.refreshTokens, tokenManager.RefreshTTL(), logger)
	authService := service.NewAuth(st.users, password.NewBcrypt(cfg.BcryptCost), tokenService, logger)
	scoreService := service.NewScore(st.scores, model.GameSet(cfg.Games), location, cfg.Score.MaxPoints, logger)
	leaderboardService := service.NewLeaderboard(st.users, cfg.Leaderboard.Limit, config.MaxLeaderboardLimit, logger)

	r := router.New(authService, scoreService, leaderboardService, tokenService, httpctx.NewManager(), logger)
	httpSrv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpSrv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpSrv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
