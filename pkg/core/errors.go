package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the execution pipeline. Callers classify failures with
// errors.Is and react per the retry policy: venue errors are retryable,
// order-not-found is fatal for the job, persistence errors are fatal for the
// current step.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrVenue             = errors.New("venue error")
	ErrPersistence       = errors.New("persistence error")
	ErrUnknownVenue      = errors.New("unknown venue")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError rejects a submission before any job is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a submission validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
