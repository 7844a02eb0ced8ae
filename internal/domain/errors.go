package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the persistence layer.

// ErrNotFound indicates a referenced entity is absent.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates bad input, caught before any mutation.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInsufficientFunds indicates not enough wallet balance for the operation.
type ErrInsufficientFunds struct {
	WalletID  string
	Available float64
	Required  float64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds in wallet %s: available=%.2f required=%.2f", e.WalletID, e.Available, e.Required)
}

// ErrDuplicateKey indicates an insert collided with an existing primary key.
type ErrDuplicateKey struct {
	Collection string
	Key        string
}

func (e *ErrDuplicateKey) Error() string {
	return fmt.Sprintf("duplicate key in %s: %s", e.Collection, e.Key)
}

// ErrGuardedDeletion indicates a bulk delete/move was refused because it
// targeted the unclassified sentinel (quick expenses are protected).
type ErrGuardedDeletion struct {
	Operation string
}

func (e *ErrGuardedDeletion) Error() string {
	return fmt.Sprintf("refusing %s: unclassified expenses are protected", e.Operation)
}

// ErrStorage wraps a storage-engine failure with the operation that hit it.
// The engine's error is preserved for diagnostics and quota detection.
type ErrStorage struct {
	Op  string
	Err error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage failure [%s]: %v", e.Op, e.Err)
}

func (e *ErrStorage) Unwrap() error {
	return e.Err
}

// IsQuotaExceeded reports whether a storage error is disk/quota exhaustion,
// which the UI must surface distinctly from a generic failure.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "no space left on device")
}
