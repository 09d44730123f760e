package checkout

import (
	"errors"
	"fmt"
	"strings"

	"storefront/domain/shared"
)

// Sentinel errors for the checkout subdomain. Use errors.Is against these;
// the constructors below attach context and a creation-point stack.
var (
	// ErrEmptyCheckout is returned when a checkout is initialized without a
	// product selection. An empty cart is unrecoverable: the flow renders
	// the empty-checkout view and exposes no step transitions.
	ErrEmptyCheckout = errors.New("checkout has no items")

	// ErrInvalidQuantity is returned for quantities outside 1-10.
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 10")

	// ErrValidation marks a step transition blocked by missing required
	// fields. The concrete error is always a *ValidationError.
	ErrValidation = errors.New("required fields missing")

	// ErrInvalidTransition marks a step change the flow does not allow,
	// e.g. placing an order before Review or retreating from Shipping.
	ErrInvalidTransition = errors.New("invalid checkout step transition")

	// ErrSubmissionInFlight is returned when order placement is activated
	// again while a prior submission is still pending, and by every step or
	// field mutation attempted in that window. The duplicate activation must
	// not reach the order API, and an edit must not move the session off
	// Review underneath a submission the order API may still accept.
	ErrSubmissionInFlight = errors.New("order submission already in flight")

	// ErrSubmissionFailed wraps failures reported by the order API. The
	// checkout stays at Review with all entered data intact; retry is
	// strictly user-initiated.
	ErrSubmissionFailed = errors.New("order submission failed")

	// ErrCheckoutNotFound is returned by session stores for unknown IDs.
	ErrCheckoutNotFound = errors.New("checkout not found")

	// ErrConflictingSession is returned when a session store already holds a
	// checkout under the same ID.
	ErrConflictingSession = errors.New("checkout session already exists")

	// ErrUnknownField is returned when a field merge names a field that
	// does not exist on the record.
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError blocks a forward transition and names every missing
// required field so the UI can highlight them, not just say "invalid".
type ValidationError struct {
	Step          Step
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s step: missing required fields: %s",
		e.Step, strings.Join(e.MissingFields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewInvalidTransitionError creates an invalid-transition error recording the
// step the flow was at and the action that was rejected.
func NewInvalidTransitionError(from Step, action string) error {
	return &checkoutError{
		sentinel: ErrInvalidTransition,
		message:  fmt.Sprintf("cannot %s from %s step", action, from),
		stack:    shared.CaptureStack(3),
	}
}

// NewSubmissionFailedError wraps an order API failure.
func NewSubmissionFailedError(cause error) error {
	return &checkoutError{
		sentinel: ErrSubmissionFailed,
		cause:    cause,
		message:  "order submission failed: " + cause.Error(),
		stack:    shared.CaptureStack(3),
	}
}

// NewCheckoutNotFoundError creates a not-found error for a session ID.
func NewCheckoutNotFoundError(id string) error {
	return &checkoutError{
		sentinel: ErrCheckoutNotFound,
		message:  "checkout not found: " + id,
		stack:    shared.CaptureStack(3),
	}
}

// checkoutError carries a sentinel, an optional cause, and the stack of its
// creation point. It implements error, Unwrap and shared.Stacker.
type checkoutError struct {
	sentinel error
	cause    error
	message  string
	stack    []uintptr
}

func (e *checkoutError) Error() string {
	return e.message
}

func (e *checkoutError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.sentinel, e.cause}
	}
	return []error{e.sentinel}
}

// Stack implements shared.Stacker.
func (e *checkoutError) Stack() []string {
	return shared.FormatStack(e.stack)
}
