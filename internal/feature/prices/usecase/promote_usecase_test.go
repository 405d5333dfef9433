package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

func TestPromoteUsecase_Promote(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		staging := &mockStagingRepository{PromoteAllFunc: func(context.Context) (int64, error) { return 42, nil }}

		res, err := NewPromoteUsecase(staging).Promote(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(42), res.Rows)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		staging := &mockStagingRepository{PromoteAllFunc: func(context.Context) (int64, error) { return 0, ErrDB }}

		_, err := NewPromoteUsecase(staging).Promote(context.Background())

		assert.ErrorIs(t, err, ErrDB)
	})
}

func TestPriceUsecase_GetPrices_ClampsLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: 30},
		{name: "passthrough", limit: 5, want: 5},
		{name: "clamped", limit: 100000, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got int
			repo := &mockPriceRepository{FindFunc: func(_ context.Context, _ string, limit int) ([]entity.PriceBar, error) {
				got = limit
				return nil, nil
			}}

			_, err := NewPriceUsecase(repo, repo).GetPrices(context.Background(), "AAA", tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceUsecase_Stats(t *testing.T) {
	t.Parallel()

	var since time.Time
	repo := &mockPriceRepository{StatsFunc: func(_ context.Context, s time.Time) (entity.PriceStats, error) {
		since = s
		return entity.PriceStats{Records: 7}, nil
	}}

	st, err := NewPriceUsecase(repo, repo).Stats(context.Background(), time.Date(2025, 1, 10, 13, 0, 0, 0, time.UTC), 5)

	require.NoError(t, err)
	assert.Equal(t, int64(7), st.Records)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), since)
}
