// Package storeerr defines run-level storage failures.
package storeerr

import "errors"

// ErrUnavailable means the reference database could not be reached. A run that hits it aborts.
var ErrUnavailable = errors.New("storage unavailable")
