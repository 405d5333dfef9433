// Package usecase implements classification enrichment, the data-quality purge and re-enabling.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// ProfileSource reports industry and sector for a ticker.
// A sourceerr.ErrNotFound error means the provider has no profile.
type ProfileSource interface {
	Name() string
	GetClassification(ctx context.Context, ticker string) (entity.Classification, error)
}

// StockRepository abstracts the stocks classification table.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type StockRepository interface {
	ListIncomplete(ctx context.Context) ([]string, error)
	UpdateClassification(ctx context.Context, ticker string, c entity.Classification) error
	// PurgeIncompleteExcluded hard-deletes incomplete stocks present in the excluded cache,
	// together with their symbol and price rows, in one transaction.
	PurgeIncompleteExcluded(ctx context.Context) (entity.PurgeResult, error)
}

// ExcludedRepository abstracts the excluded-ticker cache.
type ExcludedRepository interface {
	ListExcluded(ctx context.Context) (map[string]string, error)
	Exclude(ctx context.Context, ticker, reason string) error
	Remove(ctx context.Context, tickers []string) (int64, error)
	List(ctx context.Context) ([]entity.ExcludedTicker, error)
}

// EnrichUsecase fills missing industry/sector from an ordered chain of providers.
type EnrichUsecase struct {
	stocks   StockRepository
	excluded ExcludedRepository
	sources  []ProfileSource
}

// NewEnrichUsecase creates an EnrichUsecase. sources are tried in the given order.
func NewEnrichUsecase(stocks StockRepository, excluded ExcludedRepository, sources []ProfileSource) *EnrichUsecase {
	return &EnrichUsecase{stocks: stocks, excluded: excluded, sources: sources}
}

// Enrich processes incomplete stocks sequentially and stops at the first provider that
// returns both industry and sector. A ticker is excluded only if every provider answered
// without a transient error; otherwise it is retried next run.
func (u *EnrichUsecase) Enrich(ctx context.Context) (entity.EnrichResult, error) {
	res := entity.EnrichResult{BySource: map[string]int{}}

	tickers, err := u.stocks.ListIncomplete(ctx)
	if err != nil {
		return res, fmt.Errorf("list incomplete stocks: %w", err)
	}
	skip, err := u.excluded.ListExcluded(ctx)
	if err != nil {
		return res, fmt.Errorf("list excluded tickers: %w", err)
	}

	for _, t := range tickers {
		if _, ok := skip[t]; ok {
			res.SkippedExcluded++
			continue
		}
		res.Candidates++

		c, transient, err := u.lookup(ctx, t)
		if err != nil {
			return res, err
		}
		switch {
		case c.Complete():
			if err := u.stocks.UpdateClassification(ctx, t, c); err != nil {
				return res, fmt.Errorf("update classification %s: %w", t, err)
			}
			res.Enriched++
			res.BySource[c.Source]++
		case transient:
			res.Failed = append(res.Failed, t)
		default:
			if err := u.excluded.Exclude(ctx, t, entity.ReasonNoIndustryData); err != nil {
				return res, fmt.Errorf("exclude %s: %w", t, err)
			}
			res.Excluded = append(res.Excluded, t)
		}
	}

	slog.Info("classification enriched",
		"candidates", res.Candidates, "enriched", res.Enriched,
		"excluded", len(res.Excluded), "failed", len(res.Failed), "skipped", res.SkippedExcluded)
	return res, nil
}

// lookup walks the provider chain. The returned error is non-nil only when ctx is done.
func (u *EnrichUsecase) lookup(ctx context.Context, ticker string) (entity.Classification, bool, error) {
	transient := false
	for _, src := range u.sources {
		c, err := src.GetClassification(ctx, ticker)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return entity.Classification{}, false, ctxErr
			}
			if sourceerr.IsNotFound(err) {
				continue
			}
			if !errors.Is(err, sourceerr.ErrContract) {
				transient = true
			}
			slog.Warn("classification lookup failed", "ticker", ticker, "source", src.Name(), "error", err)
			continue
		}
		if c.Complete() {
			c.Source = src.Name()
			return c, false, nil
		}
	}
	return entity.Classification{}, transient, nil
}

// Purge removes incomplete stocks that the excluded cache marks as unrecoverable.
func (u *EnrichUsecase) Purge(ctx context.Context) (entity.PurgeResult, error) {
	res, err := u.stocks.PurgeIncompleteExcluded(ctx)
	if err != nil {
		return res, fmt.Errorf("purge incomplete stocks: %w", err)
	}
	if len(res.Tickers) > 0 {
		slog.Info("incomplete stocks purged", "tickers", len(res.Tickers), "symbols", res.Symbols, "prices", res.Prices)
	}
	return res, nil
}
