package kinopoisk

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog failure.
type Kind int

const (
	// KindUnauthorized means the API credential is missing or rejected.
	KindUnauthorized Kind = iota + 1
	// KindRateLimited means the catalog throttled the request.
	KindRateLimited
	// KindUnavailable means the catalog could not be reached in time.
	KindUnavailable
	// KindUpstream covers every other upstream failure.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindUpstream:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Error is a classified catalog failure. Status carries the upstream HTTP
// status when one was received.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoResults marks a successful fetch that returned an empty candidate
// list. It is distinct from transport and upstream failures.
var ErrNoResults = errors.New("catalog returned no results")

// IsKind reports whether err is a catalog Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}
