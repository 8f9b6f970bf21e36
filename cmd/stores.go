package main

import (
	"context"
	"fmt"

	"github.com/dtroode/jecnagames-server/internal/config"
	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/repository/memory"
	"github.com/dtroode/jecnagames-server/internal/repository/postgres"
	"github.com/dtroode/jecnagames-server/internal/repository/redis"
	"github.com/dtroode/jecnagames-server/internal/repository/sqlite"
)

// stores bundles the repositories of one backend with the connection behind them.
type stores struct {
	users         model.UserStore
	scores        model.ScoreStore
	refreshTokens model.RefreshTokenStore
	close         func() error
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		db := memory.NewDB()
		return stores{
			users:         memory.NewUserRepository(db),
			scores:        memory.NewScoreRepository(db),
			refreshTokens: memory.NewRefreshTokenRepository(db),
			close:         db.Close,
		}, nil

	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:         postgres.NewUserRepository(db),
			scores:        postgres.NewScoreRepository(db),
			refreshTokens: postgres.NewRefreshTokenRepository(db),
			close:         db.Close,
		}, nil

	case config.BackendSQLite:
		db, err := sqlite.NewConnection(ctx, cfg.SQLite.Path)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:         sqlite.NewUserRepository(db),
			scores:        sqlite.NewScoreRepository(db),
			refreshTokens: sqlite.NewRefreshTokenRepository(db),
			close:         db.Close,
		}, nil

	case config.BackendRedis:
		db, err := redis.NewConnection(ctx, redis.Options{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			KeyPrefix:  cfg.Redis.KeyPrefix,
			MaxRetries: cfg.Redis.MaxRetries,
		})
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:         redis.NewUserRepository(db),
			scores:        redis.NewScoreRepository(db),
			refreshTokens: redis.NewRefreshTokenRepository(db),
			close:         db.Close,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
