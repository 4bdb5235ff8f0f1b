package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a referenced resource (account, currency,
// transaction) does not exist. The caller must create it first.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates malformed input (wrong line count, non-positive
// amount, bad format). Never retried; the caller must fix the input.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDomain indicates a business-rule violation: the input was well formed but
// the operation is not allowed in the current state.
var ErrDomain = errors.New("domain rule violated")

// ErrInfrastructure indicates a storage or environment failure. Retryable with
// backoff by the caller.
var ErrInfrastructure = errors.New("infrastructure failure")

// Stable domain codes surfaced to boundary layers.
const (
	CodeUnbalancedLedger       = "unbalanced_ledger"
	CodeMissingBaseCurrency    = "missing_base_currency"
	CodeInvalidRate            = "invalid_rate"
	CodeRateUnavailable        = "rate_unavailable"
	CodeDuplicateBasePromotion = "duplicate_base_promotion"
)

// DomainError carries a stable code plus human-readable detail so boundary
// layers can map it to user-visible hints without parsing messages.
type DomainError struct {
	Code   string
	Detail string
	Field  string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Detail, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Unwrap lets errors.Is(err, ErrDomain) match any DomainError.
func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// NewDomainError creates a business-rule violation with a stable code.
func NewDomainError(code, detail string) *DomainError {
	return &DomainError{Code: code, Detail: detail}
}

// NewValidationError wraps ErrValidation with the offending field attached.
func NewValidationError(field, detail string) error {
	if field == "" {
		return fmt.Errorf("%w: %s", ErrValidation, detail)
	}
	return fmt.Errorf("%w: %s (field %s)", ErrValidation, detail, field)
}

// NewNotFoundError wraps ErrNotFound with detail about the missing resource.
func NewNotFoundError(detail string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, detail)
}

// AppError wraps infrastructure failures, preserving the underlying cause for
// errors.Is/As checks.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInfrastructure
}

// Is reports AppError as the infrastructure kind regardless of the wrapped cause.
func (e *AppError) Is(target error) bool {
	return target == ErrInfrastructure
}

// NewAppError creates an infrastructure error wrapping the underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
