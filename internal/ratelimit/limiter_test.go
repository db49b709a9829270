package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, budgets ...Budget) *Limiter {
	t.Helper()
	l, err := NewLimiter(budgets)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}
	return l
}

// TestAcquireWithinLimit verifies that up to Limit acquisitions pass
// without blocking.
func TestAcquireWithinLimit(t *testing.T) {
	l := newTestLimiter(t, Budget{ID: "orders", Limit: 3, Interval: time.Second})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(context.Background(), "orders"); err != nil {
			t.Fatalf("Acquire #%d error = %v", i+1, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("3 acquisitions took %v, want near-instant", elapsed)
	}
	if got := l.Pending("orders"); got != 3 {
		t.Errorf("Pending = %d, want 3", got)
	}
}

// TestAcquireBlocksUntilWindowFrees verifies that the acquisition after
// the limit waits for the oldest admission to leave the window.
func TestAcquireBlocksUntilWindowFrees(t *testing.T) {
	const interval = 150 * time.Millisecond
	l := newTestLimiter(t, Budget{ID: "cash", Limit: 2, Interval: interval})

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := l.Acquire(context.Background(), "cash"); err != nil {
			t.Fatalf("Acquire #%d error = %v", i+1, err)
		}
	}
	if err := l.Acquire(context.Background(), "cash"); err != nil {
		t.Fatalf("Acquire #3 error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < interval {
		t.Errorf("third acquisition returned after %v, want >= %v", elapsed, interval)
	}
}

// TestSlidingWindowInvariant drives many acquisitions through a small
// bucket and checks that no window of the configured length ever holds
// more than the limit: stamp[i+limit] - stamp[i] >= interval for all i.
func TestSlidingWindowInvariant(t *testing.T) {
	const (
		limit    = 3
		interval = 120 * time.Millisecond
		total    = 9
	)
	l := newTestLimiter(t, Budget{ID: "portfolio", Limit: limit, Interval: interval})

	stamps := make([]time.Time, 0, total)
	for i := 0; i < total; i++ {
		if err := l.Acquire(context.Background(), "portfolio"); err != nil {
			t.Fatalf("Acquire #%d error = %v", i+1, err)
		}
		stamps = append(stamps, time.Now())
	}

	for i := 0; i+limit < len(stamps); i++ {
		gap := stamps[i+limit].Sub(stamps[i])
		if gap < interval {
			t.Errorf("acquisitions %d..%d span %v, want >= %v (window overflow)", i, i+limit, gap, interval)
		}
	}
}

// TestAcquireCancellation verifies a blocked Acquire returns promptly on
// context cancellation without consuming a slot.
func TestAcquireCancellation(t *testing.T) {
	l := newTestLimiter(t, Budget{ID: "metadata", Limit: 1, Interval: time.Minute})

	if err := l.Acquire(context.Background(), "metadata"); err != nil {
		t.Fatalf("Acquire #1 error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx, "metadata") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Acquire did not return")
	}

	if got := l.Pending("metadata"); got != 1 {
		t.Errorf("Pending = %d after cancelled acquire, want 1", got)
	}
}

// TestIndependentBuckets verifies exhausting one bucket does not block
// another.
func TestIndependentBuckets(t *testing.T) {
	l := newTestLimiter(t,
		Budget{ID: "orders", Limit: 1, Interval: time.Minute},
		Budget{ID: "cash", Limit: 1, Interval: time.Minute},
	)

	if err := l.Acquire(context.Background(), "orders"); err != nil {
		t.Fatalf("Acquire(orders) error = %v", err)
	}

	start := time.Now()
	if err := l.Acquire(context.Background(), "cash"); err != nil {
		t.Fatalf("Acquire(cash) error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Acquire(cash) took %v while orders exhausted, want near-instant", elapsed)
	}
}

// TestUnknownEndpoint verifies unmetered ids are rejected instead of
// passing through silently.
func TestUnknownEndpoint(t *testing.T) {
	l := newTestLimiter(t, Budget{ID: "orders", Limit: 1, Interval: time.Second})

	if err := l.Acquire(context.Background(), "trades"); err == nil {
		t.Error("Acquire(unknown id) error = nil, want error")
	}
	if l.Configured("trades") {
		t.Error(`Configured("trades") = true, want false`)
	}
	if !l.Configured("orders") {
		t.Error(`Configured("orders") = false, want true`)
	}
}

// TestNewLimiterValidation rejects malformed budgets.
func TestNewLimiterValidation(t *testing.T) {
	tests := []struct {
		name    string
		budgets []Budget
	}{
		{"empty id", []Budget{{ID: "", Limit: 1, Interval: time.Second}}},
		{"zero limit", []Budget{{ID: "a", Limit: 0, Interval: time.Second}}},
		{"zero interval", []Budget{{ID: "a", Limit: 1}}},
		{"duplicate id", []Budget{
			{ID: "a", Limit: 1, Interval: time.Second},
			{ID: "a", Limit: 2, Interval: time.Second},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLimiter(tt.budgets); err == nil {
				t.Error("NewLimiter() error = nil, want error")
			}
		})
	}
}
