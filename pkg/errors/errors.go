// Package errors defines the application error model: stable error codes the
// API layer maps to HTTP statuses, and the translation from domain errors to
// application errors. The domain layer never sees these codes.
package errors

import (
	"errors"
	"fmt"

	"storefront/domain/catalog"
	"storefront/domain/checkout"
	"storefront/domain/identity"
	"storefront/domain/shared"
)

// ErrorCode is a stable, machine-readable error classification.
type ErrorCode string

const (
	// Generic codes.
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// Checkout codes.
	CodeCheckoutNotFound  ErrorCode = "CHECKOUT_NOT_FOUND"
	CodeEmptyCheckout     ErrorCode = "EMPTY_CHECKOUT"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeSubmissionPending ErrorCode = "SUBMISSION_PENDING"
	CodeOrderSubmission   ErrorCode = "ORDER_SUBMISSION_FAILED"

	// Catalog codes.
	CodeProductNotFound ErrorCode = "PRODUCT_NOT_FOUND"
)

// AppError is the application-level error. Fields carries the offending
// field names for validation errors so the client can highlight them.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Fields  []string  `json:"fields,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError wrapping a cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func Unauthorized(message string) *AppError    { return New(CodeUnauthorized, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError translates a domain or infrastructure error into an
// AppError. Unknown errors become internal errors wrapping the cause, so no
// failure is silently swallowed and none leaks internals to the client.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		return &AppError{
			Code:    CodeValidation,
			Message: verr.Error(),
			Fields:  verr.MissingFields,
			Err:     err,
		}
	}

	switch {
	case errors.Is(err, checkout.ErrCheckoutNotFound):
		return Wrap(err, CodeCheckoutNotFound, "checkout not found")
	case errors.Is(err, checkout.ErrEmptyCheckout):
		return Wrap(err, CodeEmptyCheckout, "no items to checkout")
	case errors.Is(err, checkout.ErrInvalidQuantity):
		return Wrap(err, CodeBadRequest, err.Error())
	case errors.Is(err, checkout.ErrUnknownField):
		return Wrap(err, CodeBadRequest, err.Error())
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		return Wrap(err, CodeSubmissionPending, "order submission already in progress")
	case errors.Is(err, checkout.ErrSubmissionFailed):
		return Wrap(err, CodeOrderSubmission, "order could not be submitted, please try again")
	case errors.Is(err, checkout.ErrInvalidTransition):
		return Wrap(err, CodeInvalidTransition, err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		return Wrap(err, CodeProductNotFound, "product not found")
	case errors.Is(err, identity.ErrNoSession):
		return Wrap(err, CodeUnauthorized, "not signed in")
	case errors.Is(err, shared.ErrUnauthorized):
		return Wrap(err, CodeUnauthorized, "not signed in")
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		return Wrap(err, CodeValidation, err.Error())
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}
