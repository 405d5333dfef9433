package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

var ErrDB = errors.New("database error")

// mockSymbolRepository is a mock implementation of the SymbolRepository interface.
type mockSymbolRepository struct {
	ListAllFunc           func(ctx context.Context) ([]entity.Symbol, error)
	ListActiveFunc        func(ctx context.Context) ([]entity.Symbol, error)
	ListActiveTickersFunc func(ctx context.Context) ([]string, error)
	FindByTickersFunc     func(ctx context.Context, tickers []string) ([]entity.Symbol, error)
	InsertNewFunc         func(ctx context.Context, symbols []entity.Symbol, stocks []entity.Stock) error
	RefreshCommonFunc     func(ctx context.Context, listings []entity.Listing, stocks []entity.Stock, loadedOn time.Time) (int64, error)
	ReactivateFunc        func(ctx context.Context, tickers []string, loadedOn time.Time) (int64, error)
	DeactivateFunc        func(ctx context.Context, tickers []string, endDate time.Time) (int64, error)
	StatsFunc             func(ctx context.Context) (entity.SymbolStats, error)

	InsertNewCalls  int
	DeactivateCalls int
}

func (m *mockSymbolRepository) ListAll(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) ListActiveTickers(ctx context.Context) ([]string, error) {
	if m.ListActiveTickersFunc != nil {
		return m.ListActiveTickersFunc(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) FindByTickers(ctx context.Context, tickers []string) ([]entity.Symbol, error) {
	if m.FindByTickersFunc != nil {
		return m.FindByTickersFunc(ctx, tickers)
	}
	return nil, nil
}

func (m *mockSymbolRepository) InsertNew(ctx context.Context, symbols []entity.Symbol, stocks []entity.Stock) error {
	m.InsertNewCalls++
	if m.InsertNewFunc != nil {
		return m.InsertNewFunc(ctx, symbols, stocks)
	}
	return nil
}

func (m *mockSymbolRepository) RefreshCommon(ctx context.Context, listings []entity.Listing, stocks []entity.Stock, loadedOn time.Time) (int64, error) {
	if m.RefreshCommonFunc != nil {
		return m.RefreshCommonFunc(ctx, listings, stocks, loadedOn)
	}
	return int64(len(listings)), nil
}

func (m *mockSymbolRepository) Reactivate(ctx context.Context, tickers []string, loadedOn time.Time) (int64, error) {
	if m.ReactivateFunc != nil {
		return m.ReactivateFunc(ctx, tickers, loadedOn)
	}
	return int64(len(tickers)), nil
}

func (m *mockSymbolRepository) Deactivate(ctx context.Context, tickers []string, endDate time.Time) (int64, error) {
	m.DeactivateCalls++
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, tickers, endDate)
	}
	return int64(len(tickers)), nil
}

func (m *mockSymbolRepository) Stats(ctx context.Context) (entity.SymbolStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return entity.SymbolStats{}, nil
}

// mockUniverseSource is a mock implementation of the UniverseSource interface.
type mockUniverseSource struct {
	name     string
	universe entity.Universe
	err      error
}

func (m *mockUniverseSource) Name() string { return m.name }

func (m *mockUniverseSource) FetchUniverse(ctx context.Context) (entity.Universe, error) {
	return m.universe, m.err
}

// mockNameResolver is a mock implementation of the NameResolver interface.
type mockNameResolver struct {
	ResolveNameFunc  func(ctx context.Context, ticker string) (string, error)
	ResolveNameCalls int
}

func (m *mockNameResolver) ResolveName(ctx context.Context, ticker string) (string, error) {
	m.ResolveNameCalls++
	if m.ResolveNameFunc != nil {
		return m.ResolveNameFunc(ctx, ticker)
	}
	return "", nil
}

// mockExclusionStore is an in-memory ExclusionStore.
type mockExclusionStore struct {
	excluded map[string]string
	listErr  error
}

func newMockExclusionStore(initial map[string]string) *mockExclusionStore {
	m := &mockExclusionStore{excluded: map[string]string{}}
	for k, v := range initial {
		m.excluded[k] = v
	}
	return m
}

func (m *mockExclusionStore) ListExcluded(ctx context.Context) (map[string]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.excluded, nil
}

func (m *mockExclusionStore) Exclude(ctx context.Context, ticker, reason string) error {
	if _, ok := m.excluded[ticker]; !ok {
		m.excluded[ticker] = reason
	}
	return nil
}

// mockPriceActivity is a mock implementation of the PriceActivity interface.
type mockPriceActivity struct {
	recent  map[string]struct{}
	last    map[string]time.Time
	err     error
	lastErr error
	since   time.Time
	asked   []string
}

func (m *mockPriceActivity) TickersWithBarsSince(ctx context.Context, tickers []string, since time.Time) (map[string]struct{}, error) {
	m.since = since
	return m.recent, m.err
}

func (m *mockPriceActivity) LastTradeDates(ctx context.Context, tickers []string) (map[string]time.Time, error) {
	m.asked = tickers
	return m.last, m.lastErr
}
