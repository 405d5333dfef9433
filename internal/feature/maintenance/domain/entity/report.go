package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	classentity "github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	symbolentity "github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

// Run status values.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// StageTiming is how long one stage took.
type StageTiming struct {
	Stage    State         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Report is everything one run did. Stage sections are nil when the stage did not run.
type Report struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Status      string    `json:"status"`
	FailedStage State     `json:"failed_stage,omitempty"`
	Error       string    `json:"error,omitempty"`

	Reconcile  *symbolentity.ReconcileResult `json:"reconcile,omitempty"`
	Enrich     *classentity.EnrichResult     `json:"enrich,omitempty"`
	Purge      *classentity.PurgeResult      `json:"purge,omitempty"`
	Ingest     *priceentity.IngestResult     `json:"ingest,omitempty"`
	Validation *priceentity.ValidationReport `json:"validation,omitempty"`
	Promote    *priceentity.PromoteResult    `json:"promote,omitempty"`
	Sweep      *symbolentity.SweepResult     `json:"sweep,omitempty"`

	Symbols *symbolentity.SymbolStats `json:"symbols,omitempty"`
	Prices  *priceentity.PriceStats   `json:"prices,omitempty"`
	Stages  []StageTiming             `json:"stages,omitempty"`
}

// FailedTickers groups the tickers each stage skipped.
func (r Report) FailedTickers() map[string][]string {
	out := map[string][]string{}
	if r.Reconcile != nil && len(r.Reconcile.ExcludedNoName) > 0 {
		out["reconcile_no_name"] = r.Reconcile.ExcludedNoName
	}
	if r.Enrich != nil && len(r.Enrich.Failed) > 0 {
		out["enrich"] = r.Enrich.Failed
	}
	if r.Ingest != nil && len(r.Ingest.Failed) > 0 {
		out["ingest"] = r.Ingest.Failed
	}
	return out
}

// Render formats the report for a terminal or a log file.
func (r Report) Render() string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("=== Maintenance report %s ===", r.RunID)
	line("status:   %s", r.Status)
	if !r.StartedAt.IsZero() {
		line("started:  %s", r.StartedAt.UTC().Format(time.RFC3339))
	}
	if !r.FinishedAt.IsZero() {
		line("finished: %s (%s)", r.FinishedAt.UTC().Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	if r.FailedStage != "" {
		line("failed stage: %s: %s", r.FailedStage, r.Error)
	}

	if rc := r.Reconcile; rc != nil {
		line("")
		line("[symbols] universe=%d new=%d inserted=%d refreshed=%d reactivated=%d missing=%d",
			rc.UniverseSize, rc.New, rc.Inserted, rc.Refreshed, rc.Reactivated, rc.Missing)
		line("          junk_filtered=%d skipped_excluded=%d inactive_candidates=%d",
			rc.FilteredJunk, rc.SkippedExcluded, len(rc.InactiveCandidates))
		if len(rc.DegradedSegments) > 0 {
			line("          degraded segments: %s", strings.Join(rc.DegradedSegments, ", "))
		}
		if len(rc.FailedSources) > 0 {
			line("          failed sources: %s", strings.Join(rc.FailedSources, ", "))
		}
	}
	if e := r.Enrich; e != nil {
		line("[classification] candidates=%d enriched=%d excluded=%d failed=%d skipped_excluded=%d",
			e.Candidates, e.Enriched, len(e.Excluded), len(e.Failed), e.SkippedExcluded)
		sources := make([]string, 0, len(e.BySource))
		for s := range e.BySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			line("          via %s: %d", s, e.BySource[s])
		}
	}
	if p := r.Purge; p != nil && len(p.Tickers) > 0 {
		line("[purge] tickers=%d stocks=%d symbols=%d prices=%d", len(p.Tickers), p.Stocks, p.Symbols, p.Prices)
	}
	if in := r.Ingest; in != nil {
		if in.NoOp {
			line("[prices] up to date (%s)", in.Range)
		} else {
			line("[prices] range=%s tickers=%d batches=%d rows=%d dropped=%d no_data=%d failed=%d",
				in.Range, in.Tickers, in.Batches, in.Rows, in.Dropped, len(in.NoData), len(in.Failed))
		}
	}
	if v := r.Validation; v != nil {
		line("[validation] rows=%d duplicate_groups=%d removed=%d anomalies=%d threshold=%d blocking=%t",
			v.Rows, v.DuplicateGroups, v.DuplicatesRemoved, v.Anomalies.Total, v.Threshold, v.Blocking)
		for _, is := range v.Issues {
			line("          %s %s: %s", is.Severity, is.Kind, is.Message)
		}
	}
	if p := r.Promote; p != nil {
		line("[promote] rows=%d", p.Rows)
	}
	if s := r.Sweep; s != nil {
		line("[sweep] candidates=%d deactivated=%d kept=%d", s.Candidates, len(s.Deactivated), len(s.Kept))
	}

	if s := r.Symbols; s != nil {
		line("")
		line("symbols: total=%d active=%d inactive=%d stocks=%d etfs=%d", s.Total, s.Active, s.Inactive, s.Stocks, s.ETFs)
	}
	if p := r.Prices; p != nil {
		line("prices:  tickers=%d records=%d days=%d", p.Tickers, p.Records, p.DaysCovered())
		if p.MinDate != nil && p.MaxDate != nil {
			line("         range %s .. %s", p.MinDate.Format(time.DateOnly), p.MaxDate.Format(time.DateOnly))
		}
		for _, d := range p.Recent {
			line("         %s  %d tickers", d.Date.Format(time.DateOnly), d.Tickers)
		}
	}

	if failed := r.FailedTickers(); len(failed) > 0 {
		line("")
		stages := make([]string, 0, len(failed))
		for s := range failed {
			stages = append(stages, s)
		}
		sort.Strings(stages)
		for _, s := range stages {
			line("failed %s (%d): %s", s, len(failed[s]), strings.Join(failed[s], " "))
		}
	}

	if len(r.Stages) > 0 {
		line("")
		for _, st := range r.Stages {
			line("%-26s %s", st.Stage, st.Duration.Round(time.Millisecond))
		}
	}
	return b.String()
}

// RunRecord is a persisted run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	FailedStage State
	Report      Report
}
