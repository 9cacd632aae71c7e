package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// scripted returns its errors in order, then succeeds.
type scripted struct {
	errs  []error
	calls int
}

func (s *scripted) Complete(context.Context, Prompt) (*Reply, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return &Reply{Content: json.RawMessage(goodBody), Model: "scripted"}, nil
}

func (s *scripted) Name() string { return "scripted" }

func noSleep(b Backend) Backend {
	r := b.(*retrying)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, Multiplier: 2}
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", nil, 1, false},
		{"rate limit then success", []error{&ErrRateLimit{}}, 2, false},
		{"unavailable exhausts attempts", []error{&ErrBackendUnavailable{}, &ErrBackendUnavailable{}, &ErrBackendUnavailable{}}, 3, true},
		{"invalid retried once", []error{&ErrInvalidNarrative{}, &ErrInvalidNarrative{}}, 2, true},
		{"truncated not retried", []error{&ErrTruncated{}}, 1, true},
		{"rejected not retried", []error{errors.New("400 bad request")}, 1, true},
		{"canceled not retried", []error{context.Canceled}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &scripted{errs: tt.errs}
			b := noSleep(WithRetry(inner, cfg))
			_, err := b.Complete(context.Background(), Prompt{})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if inner.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", inner.calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryStopsOnCanceledSleep(t *testing.T) {
	inner := &scripted{errs: []error{&ErrBackendUnavailable{}}}
	b := WithRetry(inner, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, Multiplier: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Complete(ctx, Prompt{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestBackoff(t *testing.T) {
	r := &retrying{cfg: RetryConfig{InitialWait: time.Second, MaxWait: 4 * time.Second, Multiplier: 2}}
	if got := r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second}); got != 7*time.Second {
		t.Errorf("RetryAfter backoff = %v, want 7s", got)
	}
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second} {
		got := r.backoff(attempt, &ErrBackendUnavailable{})
		lo, hi := time.Duration(float64(base)*0.8), time.Duration(float64(base)*1.2)
		if got < lo || got > hi {
			t.Errorf("backoff(%d) = %v, want within [%v, %v]", attempt, got, lo, hi)
		}
	}
}
