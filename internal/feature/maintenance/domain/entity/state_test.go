package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    State
		to      State
		wantErr bool
	}{
		{name: "idle to reconciling", from: StateIdle, to: StateReconcilingSymbols},
		{name: "validating to promoting", from: StateValidatingStaging, to: StatePromoting},
		{name: "sweeping to report", from: StateSweepingStale, to: StateReportDone},
		{name: "failed from idle", from: StateIdle, to: StateFailed},
		{name: "failed from promoting", from: StatePromoting, to: StateFailed},
		{name: "skipping a stage", from: StateIngestingPrices, to: StatePromoting, wantErr: true},
		{name: "going backwards", from: StatePromoting, to: StateIngestingPrices, wantErr: true},
		{name: "leaving report done", from: StateReportDone, to: StateFailed, wantErr: true},
		{name: "leaving failed", from: StateFailed, to: StateIdle, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Transition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestState_Next(t *testing.T) {
	t.Parallel()

	var path []State
	for s := StateIdle; s != ""; s = s.Next() {
		path = append(path, s)
	}

	assert.Equal(t, []State{
		StateIdle, StateReconcilingSymbols, StateEnrichingClassification, StateIngestingPrices,
		StateValidatingStaging, StatePromoting, StateSweepingStale, StateReportDone,
	}, path)
	assert.Equal(t, State(""), StateFailed.Next())
}

func TestRunError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	var err error = &RunError{Stage: StatePromoting, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "maintenance failed during promoting: connection refused", err.Error())

	var re *RunError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, StatePromoting, re.Stage)
}
