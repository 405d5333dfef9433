// Command server serves the read API and, when a schedule is configured, runs maintenance on it.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisv9 "github.com/redis/go-redis/v9"

	"github.com/boatjones/quant-lab/internal/app/config"
	"github.com/boatjones/quant-lab/internal/app/di"
	"github.com/boatjones/quant-lab/internal/app/router"
	mainthandler "github.com/boatjones/quant-lab/internal/feature/maintenance/transport/handler"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/transport/scheduler"
	pricehandler "github.com/boatjones/quant-lab/internal/feature/prices/transport/handler"
	symbolhandler "github.com/boatjones/quant-lab/internal/feature/symbols/transport/handler"
	"github.com/boatjones/quant-lab/internal/platform/db"
	platformhandler "github.com/boatjones/quant-lab/internal/platform/http/handler"
	"github.com/boatjones/quant-lab/internal/platform/logging"
	infraredis "github.com/boatjones/quant-lab/internal/platform/redis"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := di.OpenDatabase(cfg.DB)
	if err != nil {
		return err
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := di.Build(cfg, gdb, rdb, reg)
	if err != nil {
		return err
	}

	checks := map[string]platformhandler.Pinger{
		"db": func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	engine := router.NewRouter(router.Handlers{
		Health:  platformhandler.NewHealthHandler(checks),
		Symbols: symbolhandler.NewSymbolHandler(app.Symbols),
		Prices:  pricehandler.NewPriceHandler(app.Prices),
		Runs:    mainthandler.NewRunHandler(app.Reports),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	if spec := cfg.Maintenance.Schedule; spec != "" {
		if err := cfg.RequireProviderKeys(); err != nil {
			return err
		}
		loc, err := cfg.Maintenance.Location()
		if err != nil {
			return err
		}
		sched := scheduler.New(app.Orchestrator, loc, cfg.Maintenance.RunTimeout)
		if err := sched.Start(spec); err != nil {
			return err
		}
		slog.Info("next maintenance run", "at", sched.Next())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			sched.Stop(shutdownCtx)
		}()
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: engine}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
