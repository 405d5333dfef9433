package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
)

type mockRunner struct {
	runFn func(ctx context.Context, opts usecase.RunOptions) (entity.Report, error)
	calls int
}

func (m *mockRunner) Run(ctx context.Context, opts usecase.RunOptions) (entity.Report, error) {
	m.calls++
	if m.runFn != nil {
		return m.runFn(ctx, opts)
	}
	return entity.Report{}, nil
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := New(&mockRunner{}, time.UTC, time.Hour)
	assert.Error(t, s.Start("not a cron spec"))
	assert.True(t, s.Next().IsZero())
}

func TestScheduler_NextUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EST", -5*60*60)
	s := New(&mockRunner{}, loc, time.Hour)
	require.NoError(t, s.Start("30 6 * * *"))
	defer s.Stop(context.Background())

	next := s.Next().In(loc)
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestScheduler_RunOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "failure", err: &entity.RunError{Stage: entity.StateIngestingPrices, Err: errors.New("db down")}},
		{name: "in progress", err: usecase.ErrRunInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotDeadline bool
			runner := &mockRunner{runFn: func(ctx context.Context, opts usecase.RunOptions) (entity.Report, error) {
				_, gotDeadline = ctx.Deadline()
				assert.Zero(t, opts.BackfillDays)
				return entity.Report{RunID: "r1"}, tt.err
			}}

			New(runner, nil, time.Hour).runOnce()

			assert.Equal(t, 1, runner.calls)
			assert.True(t, gotDeadline, "scheduled runs are bounded by the timeout")
		})
	}
}
