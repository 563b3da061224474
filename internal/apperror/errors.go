package apperror

import (
	"errors"
	"fmt"
)

// ErrAuthRequired marks operations that need an owner identity.
// Store load/create treat it as a silent no-op; everything else surfaces it.
var ErrAuthRequired = errors.New("authentication required")

// ValidationError is a deterministic, client-detectable failure
// (bad file type, bad resolution, undecodable image, bad request body).
// It is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SubmissionError means the ECG webhook was attempted up to the retry
// budget and never answered with a 2xx. It carries the last failure.
type SubmissionError struct {
	Attempts   int
	LastStatus int // 0 when the transport itself failed
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.LastStatus > 0 {
		return fmt.Sprintf("submission failed after %d attempts (last status %d): %s", e.Attempts, e.LastStatus, e.Message)
	}
	return fmt.Sprintf("submission failed after %d attempts: %s", e.Attempts, e.Message)
}

func IsSubmission(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

// PersistenceError wraps a failure from the remote store. The core never
// retries these; callers may retry manually.
type PersistenceError struct {
	Op  string // "list", "insert", "update", "delete", "subscribe"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
