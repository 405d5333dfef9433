// Package usecase implements symbol reconciliation, the staleness sweep and symbol queries.
package usecase

import (
	"context"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

// SymbolRepository abstracts persistence of symbols and their stock classification rows.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListAll(ctx context.Context) ([]entity.Symbol, error)
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveTickers(ctx context.Context) ([]string, error)
	FindByTickers(ctx context.Context, tickers []string) ([]entity.Symbol, error)
	// InsertNew writes new symbols and the classification rows of new stocks in one transaction.
	InsertNew(ctx context.Context, symbols []entity.Symbol, stocks []entity.Stock) error
	// RefreshCommon updates name, exchange and classification without overwriting stored values with empty ones.
	RefreshCommon(ctx context.Context, listings []entity.Listing, stocks []entity.Stock, loadedOn time.Time) (int64, error)
	Reactivate(ctx context.Context, tickers []string, loadedOn time.Time) (int64, error)
	Deactivate(ctx context.Context, tickers []string, endDate time.Time) (int64, error)
	Stats(ctx context.Context) (entity.SymbolStats, error)
}

// UniverseSource reports the current listing universe of one provider.
type UniverseSource interface {
	Name() string
	FetchUniverse(ctx context.Context) (entity.Universe, error)
}

// NameResolver looks up a company name for a ticker the universe reported without one.
type NameResolver interface {
	ResolveName(ctx context.Context, ticker string) (string, error)
}

// ExclusionStore is the excluded-ticker cache.
type ExclusionStore interface {
	ListExcluded(ctx context.Context) (map[string]string, error)
	Exclude(ctx context.Context, ticker, reason string) error
}

// PriceActivity answers whether tickers have production bars in a window and when they last traded.
type PriceActivity interface {
	TickersWithBarsSince(ctx context.Context, tickers []string, since time.Time) (map[string]struct{}, error)
	// LastTradeDates omits tickers without any bars.
	LastTradeDates(ctx context.Context, tickers []string) (map[string]time.Time, error)
}
