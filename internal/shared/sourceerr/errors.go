// Package sourceerr classifies failures returned by market data providers.
package sourceerr

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks a failure that may succeed on a later run (network, 5xx, throttling, auth).
	ErrTransient = errors.New("transient provider error")
	// ErrContract marks a payload that does not match the documented shape.
	ErrContract = errors.New("provider contract violation")
	// ErrNotFound marks a provider answering "no such symbol". Callers treat it as empty data.
	ErrNotFound = errors.New("provider has no data")
)

// Error carries the provider, the operation and the classified kind of a failure.
type Error struct {
	Provider string
	Op       string
	Status   int
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (http %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Transient wraps err as a transient failure.
func Transient(provider, op string, err error) error {
	return &Error{Provider: provider, Op: op, Kind: ErrTransient, Err: err}
}

// Contract wraps err as a contract violation.
func Contract(provider, op string, err error) error {
	return &Error{Provider: provider, Op: op, Kind: ErrContract, Err: err}
}

// NotFound reports that the provider has no data for the request.
func NotFound(provider, op string) error {
	return &Error{Provider: provider, Op: op, Kind: ErrNotFound}
}

// FromStatus maps a non-2xx HTTP status to a classified error.
// 404 means "no data"; everything else is retried on a later run.
func FromStatus(provider, op string, status int, body string) error {
	kind := ErrTransient
	if status == 404 {
		kind = ErrNotFound
	}
	var err error
	if body != "" {
		err = errors.New(body)
	}
	return &Error{Provider: provider, Op: op, Status: status, Kind: kind, Err: err}
}

// IsTransient reports whether err should be retried on a later run.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsNotFound reports whether err means the provider has no data for the request.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
