package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog failure. Kinds carry meaning only; rendering them
// for a transport is left to the caller.
type Kind int

const (
	KindMalformedInput Kind = iota + 1
	KindMissingField
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindMissingField:
		return "missing_field"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is returned by every failing catalog operation. A failed operation
// never leaves a partial mutation behind.
type Error struct {
	Kind Kind
	// Field is the missing field for KindMissingField.
	Field string
	// ID is the strategy id for KindNotFound and KindForbidden.
	ID string
	// Payload is the raw input for KindMalformedInput.
	Payload string
	// Err is the decoder diagnostic for KindMalformedInput.
	Err error
}

var (
	ErrMalformedInput = &Error{Kind: KindMalformedInput}
	ErrMissingField   = &Error{Kind: KindMissingField}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrForbidden      = &Error{Kind: KindForbidden}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformedInput:
		if e.Err != nil {
			return fmt.Sprintf("failed to parse strategy: %v", e.Err)
		}
		return "failed to parse strategy"
	case KindMissingField:
		return fmt.Sprintf("strategy %s is required", e.Field)
	case KindNotFound:
		return fmt.Sprintf("strategy '%s' not found", e.ID)
	case KindForbidden:
		return "only the strategy creator can modify this strategy"
	default:
		return "strategy catalog error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, so errors.Is(err, ErrNotFound) holds for any not-found
// error regardless of its id.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf reports the catalog kind of err, or 0 if err is not a catalog error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func malformed(payload []byte, err error) *Error {
	return &Error{Kind: KindMalformedInput, Payload: string(payload), Err: err}
}

func missingField(field string) *Error {
	return &Error{Kind: KindMissingField, Field: field}
}

func notFound(id string) *Error {
	return &Error{Kind: KindNotFound, ID: id}
}

func forbidden(id string) *Error {
	return &Error{Kind: KindForbidden, ID: id}
}
