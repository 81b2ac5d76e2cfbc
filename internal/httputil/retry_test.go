package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDo_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
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
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_AllAttemptsFail(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	sentinel := errors.New("boom")
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("expected error after all attempts failed")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_PermanentAbortsImmediately(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	sentinel := errors.New("rejected")
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return Permanent(sentinel)
	})
	if err != sentinel {
		t.Fatalf("expected the permanent error unwrapped, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("should not retry a permanent error, got %d calls", calls)
	}
}

func TestDo_BackoffDoubles(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 40 * time.Millisecond}

	_ = Do(context.Background(), cfg, func(ctx context.Context) error {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		return errors.New("transient")
	})

	if len(gaps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(gaps))
	}
	// No delay before the first attempt, then 40ms and 80ms.
	if gaps[0] > 20*time.Millisecond {
		t.Fatalf("unexpected delay before first attempt: %s", gaps[0])
	}
	if gaps[1] < 40*time.Millisecond {
		t.Fatalf("expected >=40ms before second attempt, got %s", gaps[1])
	}
	if gaps[2] < 80*time.Millisecond {
		t.Fatalf("expected >=80ms before third attempt, got %s", gaps[2])
	}
}

func TestDo_NoDelayAfterFinalAttempt(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, BaseDelay: 50 * time.Millisecond}

	start := time.Now()
	_ = Do(context.Background(), cfg, func(ctx context.Context) error {
		return errors.New("transient")
	})
	elapsed := time.Since(start)

	// One backoff between the two attempts, none after the last.
	if elapsed > 150*time.Millisecond {
		t.Fatalf("took too long, suspect trailing delay: %s", elapsed)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	cfg := RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond}

	err := Do(ctx, cfg, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("transient %d", calls)
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cancellation during first backoff, got %d calls", calls)
	}
}
