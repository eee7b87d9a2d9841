package types

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the consistency engine
var (
	// Identity errors
	ErrDuplicateIdentifier   = errors.New("duplicate identifier")
	ErrIdGenerationExhausted = errors.New("identifier generation exhausted")
	ErrRecordNotFound        = errors.New("record not found")

	// Validation errors
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidValue    = errors.New("invalid value")

	// Linkage errors
	ErrLinkedRecordProtected = errors.New("linked record is protected")

	// Store errors
	ErrStorageFailure = errors.New("storage failure")
)

// ValidationError reports a rejected field value. It unwraps to ErrInvalidInterval
// or ErrInvalidValue so callers can match with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// IntervalError returns a ValidationError of kind ErrInvalidInterval
func IntervalError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrInvalidInterval}
}

// ValueError returns a ValidationError of kind ErrInvalidValue
func ValueError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrInvalidValue}
}

// ProtectedError is returned when a derived soil profile is edited from the
// stratum surface. Owner names the record that must be edited instead.
type ProtectedError struct {
	SoilID    string
	OwnerKind string
	OwnerID   string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("soil profile %s is derived from %s %s; edit the %s instead",
		e.SoilID, e.OwnerKind, e.OwnerID, e.OwnerKind)
}

func (e *ProtectedError) Unwrap() error {
	return ErrLinkedRecordProtected
}

// IsNotFound reports whether err is or wraps ErrRecordNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
