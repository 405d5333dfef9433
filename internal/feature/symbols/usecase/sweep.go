package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

// SweepConfig holds the two staleness windows, in days.
type SweepConfig struct {
	LookbackDays       int
	StaleThresholdDays int
}

// ShouldDeactivate is true only when all three hold: the symbol is an inactive candidate,
// it has no production bars inside the lookback window, and it was last loaded before the
// stale threshold. A symbol that was never loaded counts as stale.
func ShouldDeactivate(sym entity.Symbol, candidate, hasRecentBars bool, today time.Time, staleThresholdDays int) bool {
	if !candidate || !sym.Active || hasRecentBars {
		return false
	}
	if sym.DateLoaded == nil {
		return true
	}
	cutoff := entity.Day(today).AddDate(0, 0, -staleThresholdDays)
	return entity.Day(*sym.DateLoaded).Before(cutoff)
}

// SweepUsecase deactivates inactive candidates that have gone stale.
type SweepUsecase struct {
	repo   SymbolRepository
	prices PriceActivity
	cfg    SweepConfig
}

// NewSweepUsecase creates a SweepUsecase.
func NewSweepUsecase(repo SymbolRepository, prices PriceActivity, cfg SweepConfig) *SweepUsecase {
	return &SweepUsecase{repo: repo, prices: prices, cfg: cfg}
}

// Sweep evaluates candidates and deactivates the stale ones. The end date is the ticker's
// last production trade date, or today when it has no bars.
func (u *SweepUsecase) Sweep(ctx context.Context, candidates []string, today time.Time) (entity.SweepResult, error) {
	res := entity.SweepResult{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return res, nil
	}
	today = entity.Day(today)

	symbols, err := u.repo.FindByTickers(ctx, candidates)
	if err != nil {
		return res, fmt.Errorf("load candidates: %w", err)
	}
	since := today.AddDate(0, 0, -u.cfg.LookbackDays)
	recent, err := u.prices.TickersWithBarsSince(ctx, candidates, since)
	if err != nil {
		return res, fmt.Errorf("load recent activity: %w", err)
	}

	var stale []string
	for _, s := range symbols {
		_, hasBars := recent[s.Ticker]
		if ShouldDeactivate(s, true, hasBars, today, u.cfg.StaleThresholdDays) {
			stale = append(stale, s.Ticker)
			continue
		}
		res.Kept = append(res.Kept, s.Ticker)
	}

	if len(stale) > 0 {
		if err := u.deactivate(ctx, stale, today); err != nil {
			return res, err
		}
	}
	res.Deactivated = stale
	slog.Info("stale symbols swept", "candidates", res.Candidates, "deactivated", len(stale), "kept", len(res.Kept))
	return res, nil
}

// deactivate groups stale tickers by end date so each group is one update.
func (u *SweepUsecase) deactivate(ctx context.Context, stale []string, today time.Time) error {
	last, err := u.prices.LastTradeDates(ctx, stale)
	if err != nil {
		return fmt.Errorf("load last trade dates: %w", err)
	}

	groups := make(map[time.Time][]string)
	var order []time.Time
	for _, t := range stale {
		end, ok := last[t]
		if !ok {
			end = today
		}
		end = entity.Day(end)
		if _, seen := groups[end]; !seen {
			order = append(order, end)
		}
		groups[end] = append(groups[end], t)
	}

	for _, end := range order {
		if _, err := u.repo.Deactivate(ctx, groups[end], end); err != nil {
			return fmt.Errorf("deactivate symbols: %w", err)
		}
	}
	return nil
}
