package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error for callers that translate it into a protocol response.
type Kind int

const (
	// Internal covers everything not classified below.
	Internal Kind = iota
	// InvalidArgument is returned for bad input, detected before any store access.
	InvalidArgument
	// NotFound is returned when no entity has the requested identifier.
	NotFound
	// Persistence is returned when the store rejects a write.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Persistence:
		return "persistence"
	default:
		return "internal"
	}
}

// ErrNotFound is the sentinel returned by lookups that find nothing.
var ErrNotFound = &Error{Kind: NotFound, Message: "entity not found"}

// Detail points at one offending input field.
type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a Kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Details []Detail
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == ErrNotFound && e.Kind == NotFound
}

// Invalid builds an InvalidArgument error.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: InvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidDetails builds an InvalidArgument error with per-field details.
func InvalidDetails(message string, details []Detail) *Error {
	return &Error{Kind: InvalidArgument, Message: message, Details: details}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// PersistenceErr wraps a store rejection.
func PersistenceErr(err error, format string, args ...any) *Error {
	return &Error{Kind: Persistence, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// DetailsOf returns the details of the first *Error in err's chain.
func DetailsOf(err error) []Detail {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// MessageOf returns the caller-facing message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
