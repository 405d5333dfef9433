package usecase

import (
	"context"
	"errors"

	"github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
)

var ErrDB = errors.New("database error")

// mockStockRepository is a mock implementation of the StockRepository interface.
type mockStockRepository struct {
	ListIncompleteFunc          func(ctx context.Context) ([]string, error)
	UpdateClassificationFunc    func(ctx context.Context, ticker string, c entity.Classification) error
	PurgeIncompleteExcludedFunc func(ctx context.Context) (entity.PurgeResult, error)

	updated map[string]entity.Classification
}

func (m *mockStockRepository) ListIncomplete(ctx context.Context) ([]string, error) {
	if m.ListIncompleteFunc != nil {
		return m.ListIncompleteFunc(ctx)
	}
	return nil, nil
}

func (m *mockStockRepository) UpdateClassification(ctx context.Context, ticker string, c entity.Classification) error {
	if m.updated == nil {
		m.updated = map[string]entity.Classification{}
	}
	m.updated[ticker] = c
	if m.UpdateClassificationFunc != nil {
		return m.UpdateClassificationFunc(ctx, ticker, c)
	}
	return nil
}

func (m *mockStockRepository) PurgeIncompleteExcluded(ctx context.Context) (entity.PurgeResult, error) {
	if m.PurgeIncompleteExcludedFunc != nil {
		return m.PurgeIncompleteExcludedFunc(ctx)
	}
	return entity.PurgeResult{}, nil
}

// mockExcludedRepository is an in-memory ExcludedRepository.
type mockExcludedRepository struct {
	items     map[string]string
	removed   []string
	listErr   error
	removeErr error
}

func newMockExcludedRepository(initial map[string]string) *mockExcludedRepository {
	m := &mockExcludedRepository{items: map[string]string{}}
	for k, v := range initial {
		m.items[k] = v
	}
	return m
}

func (m *mockExcludedRepository) ListExcluded(ctx context.Context) (map[string]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *mockExcludedRepository) Exclude(ctx context.Context, ticker, reason string) error {
	if _, ok := m.items[ticker]; !ok {
		m.items[ticker] = reason
	}
	return nil
}

func (m *mockExcludedRepository) Remove(ctx context.Context, tickers []string) (int64, error) {
	if m.removeErr != nil {
		return 0, m.removeErr
	}
	m.removed = append(m.removed, tickers...)
	var n int64
	for _, t := range tickers {
		if _, ok := m.items[t]; ok {
			delete(m.items, t)
			n++
		}
	}
	return n, nil
}

func (m *mockExcludedRepository) List(ctx context.Context) ([]entity.ExcludedTicker, error) {
	out := make([]entity.ExcludedTicker, 0, len(m.items))
	for t, r := range m.items {
		out = append(out, entity.ExcludedTicker{Ticker: t, Reason: r})
	}
	return out, nil
}

// mockProfileSource answers from a fixed table keyed by ticker.
type mockProfileSource struct {
	name    string
	answers map[string]entity.Classification
	errs    map[string]error
	calls   []string
}

func (m *mockProfileSource) Name() string { return m.name }

func (m *mockProfileSource) GetClassification(ctx context.Context, ticker string) (entity.Classification, error) {
	m.calls = append(m.calls, ticker)
	if err, ok := m.errs[ticker]; ok {
		return entity.Classification{}, err
	}
	return m.answers[ticker], nil
}
