package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testPolicy(attempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:   attempts,
		BaseDelay:     time.Millisecond,
		RetryStatuses: []int{429, 500, 502, 503, 504},
		Logger:        NewLogger(),
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	p := testPolicy(3)

	calls := 0
	err := p.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	p := testPolicy(3)

	calls := 0
	err := p.Do(context.Background(), "always-broken", func() error {
		calls++
		return errors.New("boom")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	p := testPolicy(3)

	calls := 0
	base := errors.New("not found")
	err := p.Do(context.Background(), "missing", func() error {
		calls++
		return &PermanentError{Err: base}
	})

	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestRetryableStatus(t *testing.T) {
	p := testPolicy(3)

	for _, status := range []int{429, 500, 502, 503, 504} {
		if !p.RetryableStatus(status) {
			t.Errorf("status %d should be retryable", status)
		}
	}
	for _, status := range []int{200, 301, 400, 404} {
		if p.RetryableStatus(status) {
			t.Errorf("status %d should not be retryable", status)
		}
	}
}
