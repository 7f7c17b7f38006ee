// Package errors provides the domain error categories shared by the wallet
// engines, strategies and HTTP boundary. Categories are sentinel errors so
// call sites can branch with errors.Is; DomainError adds a stable code and
// optional details for the response body.
package errors

import (
	"errors"
	"fmt"
)

// Error categories.
var (
	// ErrNotFound indicates the requested resource does not exist: an
	// unknown currency, a chain lookup on an unknown source transaction id,
	// or an achievement check against a wallet with no rollover row.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates a malformed or out-of-range argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWalletAmountNotEnough indicates a withdrawal larger than the
	// wallet balance.
	ErrWalletAmountNotEnough = errors.New("wallet amount not enough")

	// ErrRolloverNotAchieved indicates a payment withdrawal attempted
	// before the wagering requirement was met.
	ErrRolloverNotAchieved = errors.New("rollover not achieved")

	// ErrRollbackAmountMismatch indicates an update whose old amount does
	// not match the signed amount of the chain tail.
	ErrRollbackAmountMismatch = errors.New("rollback amount mismatch")

	// ErrInternal indicates a database failure, a malformed transaction
	// chain, a missing ambient transaction, or an oracle failure.
	ErrInternal = errors.New("internal error")
)

// DomainError carries a category plus a stable machine-readable code.
type DomainError struct {
	Err     error
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *DomainError) Unwrap() error { return e.Err }

func (e *DomainError) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// WithDetails attaches response details to the error.
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// NotFoundError creates a not-found error for the named resource.
func NotFoundError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ValidationError creates an invalid-input error for one field.
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    "INVALID_ARGUMENT",
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// AmountNotEnoughError creates the game-withdraw insufficient-balance error.
func AmountNotEnoughError() *DomainError {
	return &DomainError{
		Err:     ErrWalletAmountNotEnough,
		Code:    "WALLET_AMOUNT_NOT_ENOUGH",
		Message: "wallet amount not enough",
	}
}

// RolloverNotAchievedError creates the payment-withdraw gate error.
func RolloverNotAchievedError() *DomainError {
	return &DomainError{
		Err:     ErrRolloverNotAchieved,
		Code:    "ROLLOVER_NOT_ACHIEVED",
		Message: "rollover requirement not achieved",
	}
}

// RollbackAmountError creates the update old-amount mismatch error.
func RollbackAmountError(expected, got string) *DomainError {
	return &DomainError{
		Err:     ErrRollbackAmountMismatch,
		Code:    "GAME_ROLLBACK_AMOUNT_ERROR",
		Message: "old amount does not match the last transaction",
		Details: map[string]interface{}{"expected": expected, "got": got},
	}
}

// InternalError wraps an unexpected failure.
func InternalError(message string, err error) *DomainError {
	de := &DomainError{
		Err:     ErrInternal,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if err != nil {
		de.Details = map[string]interface{}{"cause": err.Error()}
	}
	return de
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err is an invalid-input error.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// GetErrorCode extracts the stable code from a domain error.
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "UNKNOWN_ERROR"
}

// Wrap annotates err with message, preserving the category for errors.Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
