package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

func TestSymbolUsecase(t *testing.T) {
	t.Parallel()

	repo := &mockSymbolRepository{
		ListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) {
			return []entity.Symbol{{Ticker: "AAPL", Active: true}}, nil
		},
		ListActiveTickersFunc: func(ctx context.Context) ([]string, error) {
			return []string{"AAPL"}, nil
		},
		StatsFunc: func(ctx context.Context) (entity.SymbolStats, error) {
			return entity.SymbolStats{Total: 2, Active: 1, Inactive: 1}, nil
		},
	}
	uc := NewSymbolUsecase(repo)
	ctx := context.Background()

	symbols, err := uc.ListActiveSymbols(ctx)
	require.NoError(t, err)
	assert.Len(t, symbols, 1)

	tickers, err := uc.ListActiveTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
}

func TestSymbolUsecase_ListActiveSymbols_Error(t *testing.T) {
	t.Parallel()

	repo := &mockSymbolRepository{
		ListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) { return nil, ErrDB },
	}

	_, err := NewSymbolUsecase(repo).ListActiveSymbols(context.Background())

	assert.ErrorIs(t, err, ErrDB)
}
