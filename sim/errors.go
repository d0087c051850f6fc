package sim

import (
	"errors"
	"fmt"
)

// Sentinel errors for the build validation taxonomy. Callers match with
// errors.Is; the wrapping *ValidationError carries the offending id and
// human-readable detail.
var (
	ErrPointBudgetExceeded = errors.New("point budget exceeded")
	ErrUnlockGateViolated  = errors.New("unlock gate violated")
	ErrUnknownID           = errors.New("unknown id")
	ErrMaxLevelExceeded    = errors.New("max level exceeded")
)

// ErrNumericOverflow marks a run whose accumulators left float64 range.
// Overflow is fatal for the affected run and counted at the batch level;
// action-cap aborts are not errors, they surface as CauseAborted results.
var ErrNumericOverflow = errors.New("numeric overflow")

// ValidationError reports a malformed or budget-violating Build. It is
// always produced before any simulation is dispatched.
type ValidationError struct {
	ID     string // offending talent/attribute id, empty for budget errors
	Detail string
	Err    error // one of the sentinel errors above
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid build: %s (%s): %s", e.Err, e.ID, e.Detail)
	}
	return fmt.Sprintf("invalid build: %s: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validationErrorf(sentinel error, id, format string, args ...any) error {
	return &ValidationError{ID: id, Detail: fmt.Sprintf(format, args...), Err: sentinel}
}
