package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	classentity "github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// Plan is the set difference between persisted symbols and the provider universe.
type Plan struct {
	New                []entity.Listing
	Common             []entity.Listing
	Missing            []string
	InactiveCandidates []string
	Reactivate         []string
}

// BuildPlan computes new = provider − persisted, missing = persisted − provider and
// common = provider ∩ persisted. Missing active symbols become inactive candidates unless
// their exchange was degraded this run.
func BuildPlan(persisted []entity.Symbol, universe map[string]entity.Listing, degraded map[string]struct{}) Plan {
	stored := make(map[string]entity.Symbol, len(persisted))
	for _, s := range persisted {
		stored[entity.NormalizeTicker(s.Ticker)] = s
	}

	var p Plan
	for _, t := range sortedKeys(universe) {
		l := universe[t]
		s, ok := stored[t]
		if !ok {
			p.New = append(p.New, l)
			continue
		}
		p.Common = append(p.Common, l)
		if !s.Active {
			p.Reactivate = append(p.Reactivate, t)
		}
	}

	for _, t := range sortedKeys(stored) {
		if _, ok := universe[t]; ok {
			continue
		}
		p.Missing = append(p.Missing, t)
		s := stored[t]
		if s.Active && !entity.IsDegraded(degraded, s.Exchange) {
			p.InactiveCandidates = append(p.InactiveCandidates, t)
		}
	}
	return p
}

// ReconcileConfig tunes reconciliation.
type ReconcileConfig struct {
	FilterJunk bool
}

// ReconcileUsecase keeps the symbols table in line with the provider universe.
type ReconcileUsecase struct {
	repo       SymbolRepository
	sources    []UniverseSource
	names      NameResolver
	exclusions ExclusionStore
	cfg        ReconcileConfig
}

// NewReconcileUsecase creates a ReconcileUsecase. sources are in priority order; names may be nil.
func NewReconcileUsecase(repo SymbolRepository, sources []UniverseSource, names NameResolver, exclusions ExclusionStore, cfg ReconcileConfig) *ReconcileUsecase {
	return &ReconcileUsecase{repo: repo, sources: sources, names: names, exclusions: exclusions, cfg: cfg}
}

// Reconcile fetches every universe source, inserts new listings, refreshes common ones and
// returns missing active symbols as inactive candidates. Provider failures degrade the run;
// only storage failures are returned.
func (u *ReconcileUsecase) Reconcile(ctx context.Context, today time.Time) (entity.ReconcileResult, error) {
	today = entity.Day(today)
	var res entity.ReconcileResult

	universes := make([]entity.Universe, 0, len(u.sources))
	for _, src := range u.sources {
		uv, err := src.FetchUniverse(ctx)
		if err != nil {
			slog.Error("failed to fetch universe", "source", src.Name(), "error", err)
			res.FailedSources = append(res.FailedSources, src.Name())
			uv = entity.Universe{Source: src.Name(), FailedSegments: []string{entity.AllSegments}}
		}
		if uv.Source == "" {
			uv.Source = src.Name()
		}
		universes = append(universes, uv)
	}

	merged, degraded := entity.MergeUniverses(universes...)
	if u.cfg.FilterJunk {
		for t, l := range merged {
			if !l.IsCommon() {
				delete(merged, t)
				res.FilteredJunk++
			}
		}
	}
	res.UniverseSize = len(merged)
	res.DegradedSegments = sortedKeys(degraded)

	persisted, err := u.repo.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("list symbols: %w", err)
	}
	excluded, err := u.exclusions.ListExcluded(ctx)
	if err != nil {
		return res, fmt.Errorf("list excluded tickers: %w", err)
	}

	plan := BuildPlan(persisted, merged, degraded)
	res.New = len(plan.New)
	res.Missing = len(plan.Missing)
	res.InactiveCandidates = plan.InactiveCandidates

	symbols, stocks, err := u.prepareNew(ctx, plan.New, excluded, today, &res)
	if err != nil {
		return res, err
	}
	if len(symbols) > 0 {
		if err := u.repo.InsertNew(ctx, symbols, stocks); err != nil {
			return res, fmt.Errorf("insert new symbols: %w", err)
		}
		res.Inserted = len(symbols)
	}

	storedType := make(map[string]entity.AssetType, len(persisted))
	for _, s := range persisted {
		storedType[entity.NormalizeTicker(s.Ticker)] = s.AssetType
	}
	var commonStocks []entity.Stock
	for _, l := range plan.Common {
		if storedType[l.Ticker] == entity.AssetStock {
			commonStocks = append(commonStocks, stockFromListing(l))
		}
	}
	n, err := u.repo.RefreshCommon(ctx, plan.Common, commonStocks, today)
	if err != nil {
		return res, fmt.Errorf("refresh symbols: %w", err)
	}
	res.Refreshed = int(n)

	if len(plan.Reactivate) > 0 {
		n, err := u.repo.Reactivate(ctx, plan.Reactivate, today)
		if err != nil {
			return res, fmt.Errorf("reactivate symbols: %w", err)
		}
		res.Reactivated = int(n)
	}

	slog.Info("symbols reconciled",
		"universe", res.UniverseSize, "new", res.New, "inserted", res.Inserted,
		"refreshed", res.Refreshed, "reactivated", res.Reactivated,
		"missing", res.Missing, "inactive_candidates", len(res.InactiveCandidates))
	return res, nil
}

// prepareNew turns new listings into rows, resolving missing names and skipping excluded tickers.
func (u *ReconcileUsecase) prepareNew(ctx context.Context, listings []entity.Listing, excluded map[string]string, today time.Time, res *entity.ReconcileResult) ([]entity.Symbol, []entity.Stock, error) {
	var (
		symbols []entity.Symbol
		stocks  []entity.Stock
	)
	for _, l := range listings {
		if _, ok := excluded[l.Ticker]; ok {
			res.SkippedExcluded++
			continue
		}
		if l.CompanyName == "" && u.names != nil {
			name, err := u.names.ResolveName(ctx, l.Ticker)
			if err != nil && !sourceerr.IsNotFound(err) {
				// retried next run rather than excluded
				slog.Warn("failed to resolve company name", "ticker", l.Ticker, "error", err)
				continue
			}
			l.CompanyName = name
		}
		if l.CompanyName == "" {
			if err := u.exclusions.Exclude(ctx, l.Ticker, classentity.ReasonNoCompanyName); err != nil {
				return nil, nil, fmt.Errorf("exclude %s: %w", l.Ticker, err)
			}
			res.ExcludedNoName = append(res.ExcludedNoName, l.Ticker)
			continue
		}

		at := l.AssetType
		if at == "" {
			at = entity.AssetOther
		}
		loaded := today
		symbols = append(symbols, entity.Symbol{
			Ticker:      l.Ticker,
			CompanyName: l.CompanyName,
			Exchange:    l.Exchange,
			AssetType:   at,
			Active:      true,
			StartDate:   today,
			DateLoaded:  &loaded,
		})
		if at == entity.AssetStock {
			stocks = append(stocks, stockFromListing(l))
		}
	}
	return symbols, stocks, nil
}

func stockFromListing(l entity.Listing) entity.Stock {
	return entity.Stock{
		Ticker:      l.Ticker,
		CompanyName: l.CompanyName,
		Exchange:    l.Exchange,
		Industry:    l.Industry,
		Sector:      l.Sector,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
