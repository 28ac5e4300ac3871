package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetry(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Logger:      NewLogger(false),
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := testRetry(3).Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := testRetry(3).Do(context.Background(), "op", func() error {
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
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := testRetry(3).Do(context.Background(), "op", func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("final error should wrap the last failure, got %v", err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	cfg := &RetryConfig{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, Logger: NewLogger(false)}
	err := cfg.Do(ctx, "op", func() error {
		calls++
		cancel()
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected a context error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}
