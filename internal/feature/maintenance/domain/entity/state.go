// Package entity defines the maintenance run state machine, run errors and the run report.
package entity

import (
	"errors"
	"fmt"
)

// State is a step of a maintenance run.
type State string

const (
	StateIdle                    State = "idle"
	StateReconcilingSymbols      State = "reconciling_symbols"
	StateEnrichingClassification State = "enriching_classification"
	StateIngestingPrices         State = "ingesting_prices"
	StateValidatingStaging       State = "validating_staging"
	StatePromoting               State = "promoting"
	StateSweepingStale           State = "sweeping_stale"
	StateReportDone              State = "report_done"
	StateFailed                  State = "failed"
)

// sequence is the only successful path through a run.
var sequence = []State{
	StateIdle,
	StateReconcilingSymbols,
	StateEnrichingClassification,
	StateIngestingPrices,
	StateValidatingStaging,
	StatePromoting,
	StateSweepingStale,
	StateReportDone,
}

// ErrInvalidTransition is returned for a transition outside the run sequence.
var ErrInvalidTransition = errors.New("invalid state transition")

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateReportDone || s == StateFailed
}

// Next returns the successor of s on the success path, or "" for terminal states.
func (s State) Next() State {
	for i, st := range sequence[:len(sequence)-1] {
		if st == s {
			return sequence[i+1]
		}
	}
	return ""
}

// Transition validates from → to. Failed is reachable from every non-terminal state;
// otherwise only the next state in sequence is allowed.
func Transition(from, to State) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if to == StateFailed || from.Next() == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// RunError is a run-level failure tagged with the stage that failed.
type RunError struct {
	Stage State
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("maintenance failed during %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
