package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

var ErrDB = errors.New("database error")

// mockPriceSource returns canned bars or errors per ticker.
type mockPriceSource struct {
	bars  map[string][]entity.RawBar
	errs  map[string]error
	calls []string
	got   []entity.DateRange
}

func (m *mockPriceSource) Name() string { return "mock" }

func (m *mockPriceSource) GetDailyPrices(_ context.Context, ticker string, r entity.DateRange) ([]entity.RawBar, error) {
	m.calls = append(m.calls, ticker)
	m.got = append(m.got, r)
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}
	return m.bars[ticker], nil
}

// mockStagingRepository is a mock implementation of the StagingRepository interface.
type mockStagingRepository struct {
	ResetFunc        func(ctx context.Context) error
	InsertBatchFunc  func(ctx context.Context, bars []entity.PriceBar) error
	PromoteAllFunc   func(ctx context.Context) (int64, error)
	DeduplicateFunc  func(ctx context.Context) (int64, error)
	CountErr         error
	Rows             int64
	DuplicateGroups  int64
	Anomalies        entity.AnomalyCounts
	ResetCalls       int
	DeduplicateCalls int
	Batches          [][]entity.PriceBar
}

func (m *mockStagingRepository) Reset(ctx context.Context) error {
	m.ResetCalls++
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx)
	}
	return nil
}

func (m *mockStagingRepository) InsertBatch(ctx context.Context, bars []entity.PriceBar) error {
	m.Batches = append(m.Batches, bars)
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, bars)
	}
	return nil
}

func (m *mockStagingRepository) Count(context.Context) (int64, error) {
	return m.Rows, m.CountErr
}

func (m *mockStagingRepository) CountDuplicateGroups(context.Context) (int64, error) {
	return m.DuplicateGroups, nil
}

func (m *mockStagingRepository) CountAnomalies(context.Context) (entity.AnomalyCounts, error) {
	return m.Anomalies, nil
}

func (m *mockStagingRepository) Deduplicate(ctx context.Context) (int64, error) {
	m.DeduplicateCalls++
	if m.DeduplicateFunc != nil {
		return m.DeduplicateFunc(ctx)
	}
	return 0, nil
}

func (m *mockStagingRepository) PromoteAll(ctx context.Context) (int64, error) {
	if m.PromoteAllFunc != nil {
		return m.PromoteAllFunc(ctx)
	}
	return 0, nil
}

// mockPriceRepository is a mock implementation of the PriceRepository and PriceReader interfaces.
type mockPriceRepository struct {
	MaxDate   time.Time
	HasData   bool
	MaxErr    error
	StatsFunc func(ctx context.Context, since time.Time) (entity.PriceStats, error)
	FindFunc  func(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error)
}

func (m *mockPriceRepository) MaxTradeDate(context.Context) (time.Time, bool, error) {
	return m.MaxDate, m.HasData, m.MaxErr
}

func (m *mockPriceRepository) Stats(ctx context.Context, since time.Time) (entity.PriceStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, since)
	}
	return entity.PriceStats{}, nil
}

func (m *mockPriceRepository) FindByTicker(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, ticker, limit)
	}
	return nil, nil
}
