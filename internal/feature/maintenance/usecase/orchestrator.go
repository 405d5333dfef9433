package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

// Deps are the stage implementations. Cache, Runs and Metrics are optional.
type Deps struct {
	Reconciler SymbolReconciler
	Enricher   ClassificationEnricher
	Symbols    SymbolQuery
	Ingestor   PriceIngestor
	Validator  StagingValidator
	Promoter   ProductionPromoter
	Sweeper    StaleSweeper
	Prices     PriceStatsReader
	Cache      CacheInvalidator
	Runs       RunStore
	Metrics    MetricsSink
}

// Config tunes the orchestrator.
type Config struct {
	// PurgeIncomplete runs the data-quality purge after enrichment.
	PurgeIncomplete bool
	// RecentDays is the per-day coverage window of the report.
	RecentDays int
}

// RunOptions are per-run overrides.
type RunOptions struct {
	// BackfillDays > 0 re-fetches a fixed window instead of resuming after the latest bar.
	BackfillDays int
}

// Orchestrator drives one maintenance run through its stages, strictly in sequence.
type Orchestrator struct {
	deps    Deps
	cfg     Config
	now     func() time.Time
	newID   func() string
	running atomic.Bool

	mu    sync.Mutex
	state entity.State
}

// NewOrchestrator creates an Orchestrator in the idle state.
func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = 7
	}
	return &Orchestrator{
		deps:  deps,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
		state: entity.StateIdle,
	}
}

// State returns the current state.
func (o *Orchestrator) State() entity.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// run carries the mutable state of one Run call.
type run struct {
	log    *slog.Logger
	today  time.Time
	report *entity.Report
}

// Run executes one maintenance run. On success it returns the report; on failure it returns the
// partial report and a *entity.RunError naming the failed stage. Earlier stages stay committed.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (entity.Report, error) {
	if !o.running.CompareAndSwap(false, true) {
		return entity.Report{}, ErrRunInProgress
	}
	defer o.running.Store(false)

	o.setState(entity.StateIdle)
	started := o.now()
	rep := entity.Report{RunID: o.newID(), StartedAt: started, Status: entity.StatusRunning}
	r := &run{
		log:    slog.With("run_id", rep.RunID),
		today:  priceentity.Day(started),
		report: &rep,
	}
	r.log.Info("maintenance run started", "backfill_days", opts.BackfillDays)

	stages := []struct {
		state entity.State
		fn    func(ctx context.Context, r *run) error
	}{
		{entity.StateReconcilingSymbols, o.reconcile},
		{entity.StateEnrichingClassification, o.enrich},
		{entity.StateIngestingPrices, func(ctx context.Context, r *run) error { return o.ingest(ctx, r, opts.BackfillDays) }},
		{entity.StateValidatingStaging, o.validate},
		{entity.StatePromoting, o.promote},
		{entity.StateSweepingStale, o.sweep},
	}

	for _, st := range stages {
		if err := o.transition(st.state); err != nil {
			return o.fail(ctx, r, st.state, err)
		}
		if err := ctx.Err(); err != nil {
			return o.fail(ctx, r, st.state, err)
		}
		r.log.Info("stage started", "stage", st.state)
		begin := time.Now()
		err := st.fn(ctx, r)
		d := time.Since(begin)
		rep.Stages = append(rep.Stages, entity.StageTiming{Stage: st.state, Duration: d})
		if o.deps.Metrics != nil {
			o.deps.Metrics.ObserveStage(string(st.state), d)
		}
		if err != nil {
			return o.fail(ctx, r, st.state, err)
		}
		r.log.Info("stage finished", "stage", st.state, "duration", d)
	}

	if err := o.transition(entity.StateReportDone); err != nil {
		return o.fail(ctx, r, entity.StateReportDone, err)
	}
	o.collectStats(ctx, r)
	rep.Status = entity.StatusSuccess
	rep.FinishedAt = o.now()
	o.finish(ctx, r)
	r.log.Info("maintenance run finished", "duration", rep.FinishedAt.Sub(rep.StartedAt))
	return rep, nil
}

// Snapshot reports current symbol and price statistics without running any stage.
func (o *Orchestrator) Snapshot(ctx context.Context) (entity.Report, error) {
	now := o.now()
	rep := entity.Report{StartedAt: now, FinishedAt: now, Status: string(o.State())}
	sym, err := o.deps.Symbols.Stats(ctx)
	if err != nil {
		return rep, fmt.Errorf("symbol stats: %w", err)
	}
	prices, err := o.deps.Prices.Stats(ctx, priceentity.Day(now), o.cfg.RecentDays)
	if err != nil {
		return rep, fmt.Errorf("price stats: %w", err)
	}
	rep.Symbols, rep.Prices = &sym, &prices
	return rep, nil
}

func (o *Orchestrator) reconcile(ctx context.Context, r *run) error {
	res, err := o.deps.Reconciler.Reconcile(ctx, r.today)
	r.report.Reconcile = &res
	if err != nil {
		return err
	}
	o.addFailed(entity.StateReconcilingSymbols, len(res.FailedSources))
	return nil
}

func (o *Orchestrator) enrich(ctx context.Context, r *run) error {
	res, err := o.deps.Enricher.Enrich(ctx)
	r.report.Enrich = &res
	if err != nil {
		return err
	}
	o.addFailed(entity.StateEnrichingClassification, len(res.Failed))

	if !o.cfg.PurgeIncomplete {
		return nil
	}
	purged, err := o.deps.Enricher.Purge(ctx)
	r.report.Purge = &purged
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	if len(purged.Tickers) > 0 {
		r.log.Info("purged incomplete stocks", "tickers", len(purged.Tickers), "prices", purged.Prices)
	}
	return nil
}

func (o *Orchestrator) ingest(ctx context.Context, r *run, backfillDays int) error {
	tickers, err := o.deps.Symbols.ListActiveTickers(ctx)
	if err != nil {
		return fmt.Errorf("list active tickers: %w", err)
	}
	rng, err := o.deps.Ingestor.ResolveRange(ctx, r.today, backfillDays)
	if err != nil {
		return err
	}
	res, err := o.deps.Ingestor.Ingest(ctx, tickers, rng)
	r.report.Ingest = &res
	if err != nil {
		return err
	}
	o.addFailed(entity.StateIngestingPrices, len(res.Failed))
	return nil
}

func (o *Orchestrator) validate(ctx context.Context, r *run) error {
	rep, err := o.deps.Validator.Validate(ctx)
	r.report.Validation = &rep
	if o.deps.Metrics != nil {
		o.deps.Metrics.SetAnomalies(rep.Anomalies.Total)
	}
	return err
}

func (o *Orchestrator) promote(ctx context.Context, r *run) error {
	res, err := o.deps.Promoter.Promote(ctx)
	if err != nil {
		return err
	}
	r.report.Promote = &res
	if o.deps.Metrics != nil {
		o.deps.Metrics.AddPromotedRows(res.Rows)
	}
	if o.deps.Cache != nil && res.Rows > 0 {
		if err := o.deps.Cache.InvalidateAll(ctx); err != nil {
			r.log.Warn("failed to invalidate price cache", "error", err)
		}
	}
	return nil
}

func (o *Orchestrator) sweep(ctx context.Context, r *run) error {
	var candidates []string
	if r.report.Reconcile != nil {
		candidates = r.report.Reconcile.InactiveCandidates
	}
	res, err := o.deps.Sweeper.Sweep(ctx, candidates, r.today)
	r.report.Sweep = &res
	return err
}

// collectStats fills the report statistics. Failures only cost the report its statistics.
func (o *Orchestrator) collectStats(ctx context.Context, r *run) {
	if sym, err := o.deps.Symbols.Stats(ctx); err != nil {
		r.log.Warn("failed to read symbol stats", "error", err)
	} else {
		r.report.Symbols = &sym
	}
	if prices, err := o.deps.Prices.Stats(ctx, r.today, o.cfg.RecentDays); err != nil {
		r.log.Warn("failed to read price stats", "error", err)
	} else {
		r.report.Prices = &prices
	}
}

func (o *Orchestrator) fail(ctx context.Context, r *run, stage entity.State, err error) (entity.Report, error) {
	o.setState(entity.StateFailed)
	r.report.Status = entity.StatusFailed
	r.report.FailedStage = stage
	r.report.Error = err.Error()
	r.report.FinishedAt = o.now()

	level := slog.LevelError
	if errors.Is(err, context.Canceled) {
		level = slog.LevelWarn
	}
	r.log.Log(ctx, level, "maintenance run failed", "stage", stage, "error", err)

	// a cancelled ctx must not prevent the run from being recorded
	o.finish(context.WithoutCancel(ctx), r)
	return *r.report, &entity.RunError{Stage: stage, Err: err}
}

func (o *Orchestrator) finish(ctx context.Context, r *run) {
	if o.deps.Metrics != nil {
		o.deps.Metrics.RecordRun(r.report.Status, r.report.FinishedAt)
	}
	if o.deps.Runs == nil {
		return
	}
	rec := entity.RunRecord{
		ID:          r.report.RunID,
		StartedAt:   r.report.StartedAt,
		FinishedAt:  r.report.FinishedAt,
		Status:      r.report.Status,
		FailedStage: r.report.FailedStage,
		Report:      *r.report,
	}
	if err := o.deps.Runs.Save(ctx, rec); err != nil {
		r.log.Error("failed to save run record", "error", err)
	}
}

func (o *Orchestrator) transition(to entity.State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := entity.Transition(o.state, to); err != nil {
		return err
	}
	o.state = to
	return nil
}

func (o *Orchestrator) setState(s entity.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

func (o *Orchestrator) addFailed(stage entity.State, n int) {
	if o.deps.Metrics != nil {
		o.deps.Metrics.AddFailedTickers(string(stage), n)
	}
}
