package narrative

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit indicates the backend returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidNarrative indicates the backend returned content that does not
// conform to the narrative schema.
type ErrInvalidNarrative struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidNarrative) Error() string {
	return fmt.Sprintf("invalid narrative: %v", e.Err)
}

func (e *ErrInvalidNarrative) Unwrap() error { return e.Err }

// ErrBackendUnavailable indicates the backend is down or unreachable.
type ErrBackendUnavailable struct {
	Err error
}

func (e *ErrBackendUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("narrative backend unavailable: %v", e.Err)
	}
	return "narrative backend unavailable"
}

func (e *ErrBackendUnavailable) Unwrap() error { return e.Err }

// ErrTruncated indicates the reply hit the token limit.
type ErrTruncated struct {
	Content json.RawMessage
}

func (e *ErrTruncated) Error() string {
	return "narrative truncated: max tokens exceeded"
}
