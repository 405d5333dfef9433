package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/boatjones/quant-lab/internal/app/config"
	"github.com/boatjones/quant-lab/internal/app/di"
	"github.com/boatjones/quant-lab/internal/platform/logging"
	infraredis "github.com/boatjones/quant-lab/internal/platform/redis"
)

// openFunc builds the application graph; tests replace it with an in-memory database.
type openFunc func(ctx context.Context, cfg *config.Config) (*di.App, func(), error)

// environment is what every command shares.
type environment struct {
	configPath *string
	out        io.Writer
	open       openFunc
}

func (e *environment) load() (*config.Config, error) {
	cfg, err := config.Load(*e.configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging)
	return cfg, nil
}

// openApp connects PostgreSQL (and Redis when configured) and wires the use cases.
// The CLI records no Prometheus metrics; cmd/server exposes them.
func openApp(ctx context.Context, cfg *config.Config) (*di.App, func(), error) {
	gdb, err := di.OpenDatabase(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if rdb, err = infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable, cached price reads will not be invalidated", "error", err)
			rdb = nil
		}
	}

	app, err := di.Build(cfg, gdb, rdb, nil)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return app, closeFn, nil
}
