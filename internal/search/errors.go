package search

import (
	"errors"
	"fmt"
)

// Sentinel errors for the search gateway.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream provider error")
)

// Error wraps a sentinel with the failing operation and its cause.
type Error struct {
	Op    string // e.g. "search.provider", "answer.generate"
	Kind  error  // ErrInvalidInput or ErrUpstream
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func invalidInput(op, detail string) error {
	return &Error{Op: op, Kind: ErrInvalidInput, Cause: errors.New(detail)}
}

func upstream(op string, err error) error {
	return &Error{Op: op, Kind: ErrUpstream, Cause: err}
}

// IsInvalidInput reports whether err was caused by caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUpstream reports whether err came from a search or answer provider.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
