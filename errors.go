package khata

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("khata: not found")
	ErrAlreadyExists = errors.New("khata: already exists")
	ErrInvalidInput  = errors.New("khata: invalid input")

	// Ledger errors
	ErrTransactionNotFound  = errors.New("khata: transaction not found")
	ErrPartyNotFound        = errors.New("khata: party not found")
	ErrDuplicateTransaction = errors.New("khata: duplicate transaction")
	ErrAlreadyReversed      = errors.New("khata: transaction already reversed")
	ErrImmutableRecord      = errors.New("khata: record is immutable")

	// Store errors
	ErrStoreNotReady   = errors.New("khata: store not ready")
	ErrStoreClosed     = errors.New("khata: store is closed")
	ErrMigrationFailed = errors.New("khata: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("khata: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// ImmutableRecordError reports an attempt to change a financial field of a
// posted entry. The caller has to post a correction instead.
type ImmutableRecordError struct {
	TransactionID string
	Field         string
}

func (e ImmutableRecordError) Error() string {
	return fmt.Sprintf("khata: transaction %s: field %s is immutable, post a correction entry instead",
		e.TransactionID, e.Field)
}

// Unwrap lets errors.Is match ErrImmutableRecord.
func (e ImmutableRecordError) Unwrap() error { return ErrImmutableRecord }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "khata: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("khata: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the wrapped errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// ErrOrNil returns nil when no errors were collected.
func (e MultiError) ErrOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrPartyNotFound)
}

// IsValidation returns true if the caller can fix the error by resubmitting
// corrected input.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidInput)
}

// IsImmutable returns true if the error rejects an in-place edit.
func IsImmutable(err error) bool {
	return errors.Is(err, ErrImmutableRecord)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
