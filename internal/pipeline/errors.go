package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies why a run produced no results.
type Kind int

const (
	// KindSourceFetch: the element sets could not be retrieved or parsed.
	KindSourceFetch Kind = iota + 1
	// KindPropagation: a position could not be computed for some instant.
	KindPropagation
	// KindCanceled: the caller's context ended before the run finished.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindSourceFetch:
		return "source_fetch"
	case KindPropagation:
		return "propagation"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned alongside the empty output of a failed run.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline %s failure: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
