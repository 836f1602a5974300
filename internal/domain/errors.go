package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDate marks a forecast point whose date key cannot be ordered.
	ErrInvalidDate = errors.New("invalid date")
	// ErrMissingReferenceOnApprove marks a selected id with no matching suggestion.
	ErrMissingReferenceOnApprove = errors.New("missing reference on approve")
	// ErrDegenerateRange marks a profitability set whose min equals its max.
	ErrDegenerateRange = errors.New("degenerate profitability range")

	ErrSessionNotFound = errors.New("session not found")
	ErrNoSnapshot      = errors.New("no snapshot available")
)

// ReconciliationError reports the date keys that could not be ordered.
// The reconciled points are still returned alongside it.
type ReconciliationError struct {
	Kind  error
	Dates []string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation: %v: %s", e.Kind, strings.Join(quoteAll(e.Dates), ", "))
}

func (e *ReconciliationError) Unwrap() error {
	return e.Kind
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
