package di

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/boatjones/quant-lab/internal/app/config"
	classadapters "github.com/boatjones/quant-lab/internal/feature/classification/adapters"
	classusecase "github.com/boatjones/quant-lab/internal/feature/classification/usecase"
	maintadapters "github.com/boatjones/quant-lab/internal/feature/maintenance/adapters"
	maintusecase "github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
	priceadapters "github.com/boatjones/quant-lab/internal/feature/prices/adapters"
	priceusecase "github.com/boatjones/quant-lab/internal/feature/prices/usecase"
	symboladapters "github.com/boatjones/quant-lab/internal/feature/symbols/adapters"
	symbolusecase "github.com/boatjones/quant-lab/internal/feature/symbols/usecase"
	"github.com/boatjones/quant-lab/internal/platform/cache"
	"github.com/boatjones/quant-lab/internal/platform/metrics"
)

// App is the wired application graph shared by cmd/maintain and cmd/server.
type App struct {
	Orchestrator *maintusecase.Orchestrator
	Reports      *maintusecase.ReportUsecase
	Exclusions   *classusecase.ExclusionUsecase
	Symbols      *symbolusecase.SymbolUsecase
	Prices       *priceusecase.PriceUsecase
	PriceCache   *cache.CachingPriceRepository
}

// Build wires repositories, provider clients and use cases. rdb may be nil (cache bypassed);
// reg may be nil (metrics disabled).
func Build(cfg *config.Config, gdb *gorm.DB, rdb *redis.Client, reg prometheus.Registerer) (*App, error) {
	m := cfg.Maintenance
	providers := NewProviders(cfg)

	universe, err := providers.UniverseSources(m.UniverseSources)
	if err != nil {
		return nil, err
	}
	profiles, err := providers.ProfileSources(m.ClassificationSources)
	if err != nil {
		return nil, err
	}
	priceSource, err := providers.PriceSource(m.PriceSource)
	if err != nil {
		return nil, err
	}

	// repositories
	symbolRepo := symboladapters.NewSymbolRepository(gdb)
	stockRepo := classadapters.NewStockRepository(gdb)
	excludedRepo := classadapters.NewExcludedRepository(gdb)
	priceRepo := priceadapters.NewPriceRepository(gdb)
	stagingRepo := priceadapters.NewStagingRepository(gdb)
	runRepo := maintadapters.NewRunRepository(gdb)

	priceCache, err := newPriceCache(cfg, rdb, priceRepo)
	if err != nil {
		return nil, err
	}

	// company names come from Tiingo metadata whenever a key is available
	var names symbolusecase.NameResolver
	if cfg.Tiingo.APIKey != "" {
		names = providers.Tiingo
	}

	symbols := symbolusecase.NewSymbolUsecase(symbolRepo)
	prices := priceusecase.NewPriceUsecase(priceCache, priceRepo)

	deps := maintusecase.Deps{
		Reconciler: symbolusecase.NewReconcileUsecase(symbolRepo, universe, names, excludedRepo,
			symbolusecase.ReconcileConfig{FilterJunk: m.FilterJunk}),
		Enricher: classusecase.NewEnrichUsecase(stockRepo, excludedRepo, profiles),
		Symbols:  symbols,
		Ingestor: priceusecase.NewIngestUsecase(priceSource, stagingRepo, priceRepo,
			priceusecase.IngestConfig{BatchSize: m.BatchSize, FallbackDays: m.FallbackDays}),
		Validator: priceusecase.NewValidateUsecase(stagingRepo,
			priceusecase.ValidateConfig{AnomalyThreshold: m.AnomalyThreshold}),
		Promoter: priceusecase.NewPromoteUsecase(stagingRepo),
		Sweeper: symbolusecase.NewSweepUsecase(symbolRepo, priceRepo,
			symbolusecase.SweepConfig{LookbackDays: m.LookbackDays, StaleThresholdDays: m.StaleThresholdDays}),
		Prices: prices,
		Cache:  priceCache,
		Runs:   runRepo,
	}
	if reg != nil {
		deps.Metrics = metrics.New(reg)
	}

	return &App{
		Orchestrator: maintusecase.NewOrchestrator(deps, maintusecase.Config{
			PurgeIncomplete: m.PurgeIncomplete,
			RecentDays:      m.RecentDays,
		}),
		Reports:    maintusecase.NewReportUsecase(runRepo),
		Exclusions: classusecase.NewExclusionUsecase(excludedRepo),
		Symbols:    symbols,
		Prices:     prices,
		PriceCache: priceCache,
	}, nil
}

func newPriceCache(cfg *config.Config, rdb *redis.Client, inner priceusecase.PriceReader) (*cache.CachingPriceRepository, error) {
	c := cache.NewCachingPriceRepository(rdb, cfg.Redis.TTL, inner, "prices")
	if cfg.Maintenance.CacheRefreshAt == "" {
		return c, nil
	}
	at, err := time.Parse("15:04", cfg.Maintenance.CacheRefreshAt)
	if err != nil {
		return nil, fmt.Errorf("cache_refresh_at: %w", err)
	}
	loc, err := cfg.Maintenance.Location()
	if err != nil {
		return nil, err
	}
	return c.WithDailyRefresh(at.Hour(), at.Minute(), loc), nil
}
