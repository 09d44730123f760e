/*
Package shared holds the building blocks common to every subdomain: the Money
value object, domain events, and the domain error plumbing.

Domain errors follow two rules:
 1. Each subdomain defines sentinel errors so callers can use errors.Is for
    type-safe classification.
 2. Structured errors capture their stack at creation time but format it
    lazily, only when a log line actually needs it.

Domain errors never carry transport concepts (HTTP status codes live in the
API layer).
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors shared across subdomains.
var (
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks failed input validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict marks an operation rejected because of the current state
	// of the aggregate.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized marks a missing or expired identity.
	ErrUnauthorized = errors.New("unauthorized")
)

// DomainError is a structured error carrying business context and the stack
// of its creation point. It supports errors.Is / errors.As through Unwrap.
type DomainError struct {
	// Err is the underlying sentinel, used for errors.Is classification.
	Err error

	// Entity names the aggregate or entity the error belongs to.
	Entity string

	// Message is the human-readable description.
	Message string

	// Field optionally names the offending field for validation errors.
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured stack on demand, one frame per element.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// Stacker is implemented by errors that carry a creation-point stack. The API
// layer uses it to log where an error actually originated.
type Stacker interface {
	Stack() []string
}

// CaptureStack records the current call stack. skip counts the frames to
// drop, usually 3: runtime.Callers, CaptureStack, and the constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders captured frames, filtering runtime internals and
// capping the output at roughly ten frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// NewNotFoundError creates a "not found" domain error with a captured stack.
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewValidationError creates a field-level validation error.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewConflictError creates a state-conflict error.
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}
