// Package apperrors defines the error taxonomy shared by services and
// handlers. Everything here is recoverable: handlers translate these into
// user-visible responses and the caller's draft state stays intact.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAutofillInFlight signals that an autofill call is already running
	// for the same draft. The caller must wait for it to settle.
	ErrAutofillInFlight = errors.New("autofill already in flight")
)

// ValidationError blocks an operation before any external call is made.
type ValidationError struct {
	Code   string // machine-readable, e.g. "client_required"
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func Validation(code, reason string) error {
	return &ValidationError{Code: code, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AIResponseError means the generative service failed or returned data that
// does not match the output contract. The draft is never mutated on this path.
type AIResponseError struct {
	Reason string
	Err    error
}

func (e *AIResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai response: %s: %v", e.Reason, e.Err)
	}
	return "ai response: " + e.Reason
}

func (e *AIResponseError) Unwrap() error { return e.Err }

func AIResponse(reason string, err error) error {
	return &AIResponseError{Reason: reason, Err: err}
}

func IsAIResponse(err error) bool {
	var ae *AIResponseError
	return errors.As(err, &ae)
}

// PersistenceError wraps a failed store write. The in-memory draft is kept so
// the user can retry the save without re-entering data.
type PersistenceError struct {
	Op  string // e.g. "create invoice"
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
