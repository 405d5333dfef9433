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

var ErrDB = errors.New("database error")

// recorder collects the order in which stage dependencies are called.
type recorder struct {
	calls []string
}

func (r *recorder) add(name string) { r.calls = append(r.calls, name) }

type mockReconciler struct {
	rec *recorder
	res symbolentity.ReconcileResult
	err error
	got time.Time
}

func (m *mockReconciler) Reconcile(_ context.Context, today time.Time) (symbolentity.ReconcileResult, error) {
	m.rec.add("reconcile")
	m.got = today
	return m.res, m.err
}

type mockEnricher struct {
	rec      *recorder
	res      classentity.EnrichResult
	err      error
	purge    classentity.PurgeResult
	purgeErr error
}

func (m *mockEnricher) Enrich(context.Context) (classentity.EnrichResult, error) {
	m.rec.add("enrich")
	return m.res, m.err
}

func (m *mockEnricher) Purge(context.Context) (classentity.PurgeResult, error) {
	m.rec.add("purge")
	return m.purge, m.purgeErr
}

type mockSymbols struct {
	rec      *recorder
	tickers  []string
	stats    symbolentity.SymbolStats
	statsErr error
}

func (m *mockSymbols) ListActiveTickers(context.Context) ([]string, error) {
	m.rec.add("tickers")
	return m.tickers, nil
}

func (m *mockSymbols) Stats(context.Context) (symbolentity.SymbolStats, error) {
	return m.stats, m.statsErr
}

type mockIngestor struct {
	rec         *recorder
	rng         priceentity.DateRange
	res         priceentity.IngestResult
	err         error
	gotBackfill int
	gotTickers  []string
}

func (m *mockIngestor) ResolveRange(_ context.Context, _ time.Time, backfillDays int) (priceentity.DateRange, error) {
	m.gotBackfill = backfillDays
	return m.rng, nil
}

func (m *mockIngestor) Ingest(_ context.Context, tickers []string, _ priceentity.DateRange) (priceentity.IngestResult, error) {
	m.rec.add("ingest")
	m.gotTickers = tickers
	return m.res, m.err
}

type mockValidator struct {
	rec *recorder
	rep priceentity.ValidationReport
	err error
}

func (m *mockValidator) Validate(context.Context) (priceentity.ValidationReport, error) {
	m.rec.add("validate")
	return m.rep, m.err
}

type mockPromoter struct {
	rec *recorder
	res priceentity.PromoteResult
	err error
}

func (m *mockPromoter) Promote(context.Context) (priceentity.PromoteResult, error) {
	m.rec.add("promote")
	return m.res, m.err
}

type mockSweeper struct {
	rec           *recorder
	gotCandidates []string
	res           symbolentity.SweepResult
}

func (m *mockSweeper) Sweep(_ context.Context, candidates []string, _ time.Time) (symbolentity.SweepResult, error) {
	m.rec.add("sweep")
	m.gotCandidates = candidates
	return m.res, nil
}

type mockPriceStats struct {
	stats priceentity.PriceStats
}

func (m *mockPriceStats) Stats(context.Context, time.Time, int) (priceentity.PriceStats, error) {
	return m.stats, nil
}

type mockCache struct {
	rec *recorder
	err error
}

func (m *mockCache) InvalidateAll(context.Context) error {
	m.rec.add("invalidate")
	return m.err
}

// mockRunStore is an in-memory RunStore.
type mockRunStore struct {
	saved   []entity.RunRecord
	ctxErrs []error
}

func (m *mockRunStore) Save(ctx context.Context, rec entity.RunRecord) error {
	m.saved = append(m.saved, rec)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return nil
}

func (m *mockRunStore) Latest(context.Context) (entity.RunRecord, error) {
	if len(m.saved) == 0 {
		return entity.RunRecord{}, ErrNoRuns
	}
	return m.saved[len(m.saved)-1], nil
}

// mockMetrics records what the orchestrator reported.
type mockMetrics struct {
	runs      []string
	stages    []string
	failed    map[string]int
	promoted  int64
	anomalies int64
}

func (m *mockMetrics) RecordRun(status string, _ time.Time) { m.runs = append(m.runs, status) }

func (m *mockMetrics) ObserveStage(stage string, _ time.Duration) { m.stages = append(m.stages, stage) }

func (m *mockMetrics) AddFailedTickers(stage string, n int) {
	if m.failed == nil {
		m.failed = map[string]int{}
	}
	m.failed[stage] += n
}

func (m *mockMetrics) AddPromotedRows(n int64) { m.promoted += n }

func (m *mockMetrics) SetAnomalies(n int64) { m.anomalies = n }
