// Package usecase runs the maintenance state machine and serves run reports.
package usecase

import (
	"context"
	"errors"
	"time"

	classentity "github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	symbolentity "github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

var (
	// ErrRunInProgress is returned when Run is called while another run is active.
	ErrRunInProgress = errors.New("maintenance run already in progress")
	// ErrNoRuns is returned by RunStore.Latest when nothing has been recorded.
	ErrNoRuns = errors.New("no maintenance runs recorded")
)

// Following Go convention: interfaces are defined by the consumer (usecase), not the provider.

type SymbolReconciler interface {
	Reconcile(ctx context.Context, today time.Time) (symbolentity.ReconcileResult, error)
}

type ClassificationEnricher interface {
	Enrich(ctx context.Context) (classentity.EnrichResult, error)
	Purge(ctx context.Context) (classentity.PurgeResult, error)
}

type SymbolQuery interface {
	ListActiveTickers(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (symbolentity.SymbolStats, error)
}

type PriceIngestor interface {
	ResolveRange(ctx context.Context, today time.Time, backfillDays int) (priceentity.DateRange, error)
	Ingest(ctx context.Context, tickers []string, r priceentity.DateRange) (priceentity.IngestResult, error)
}

type StagingValidator interface {
	Validate(ctx context.Context) (priceentity.ValidationReport, error)
}

type ProductionPromoter interface {
	Promote(ctx context.Context) (priceentity.PromoteResult, error)
}

type StaleSweeper interface {
	Sweep(ctx context.Context, candidates []string, today time.Time) (symbolentity.SweepResult, error)
}

type PriceStatsReader interface {
	Stats(ctx context.Context, today time.Time, recentDays int) (priceentity.PriceStats, error)
}

// CacheInvalidator drops cached price reads after production changes.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// RunStore persists run records.
type RunStore interface {
	Save(ctx context.Context, rec entity.RunRecord) error
	Latest(ctx context.Context) (entity.RunRecord, error)
}

// MetricsSink receives run metrics.
type MetricsSink interface {
	RecordRun(status string, finishedAt time.Time)
	ObserveStage(stage string, d time.Duration)
	AddFailedTickers(stage string, n int)
	AddPromotedRows(n int64)
	SetAnomalies(n int64)
}
