// Package ratelimit implements sliding-window request budgets keyed by
// endpoint id.
//
// Each budget allows at most Limit acquisitions within any window of
// length Interval. This is stricter than a token bucket: a bucket refilled
// on a timer can admit up to twice its limit inside one window straddling
// a refill. The broker meters per route on exact windows, so the limiter
// keeps the timestamp of every admitted acquisition and admits a new one
// only when fewer than Limit timestamps remain inside the trailing window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// Budget describes one endpoint bucket: at most Limit acquisitions within
// any trailing window of length Interval.
type Budget struct {
	ID       string
	Limit    int
	Interval time.Duration
}

type bucket struct {
	limit    int
	interval time.Duration
	stamps   deque.Deque[time.Time] // admission times, oldest at front
}

// Limiter coordinates acquisition across all buckets. It is the only
// state shared between polling loops and is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	now func() time.Time // swapped in tests
}

// NewLimiter builds a limiter from the given budgets. A budget with a
// non-positive limit or interval is rejected.
func NewLimiter(budgets []Budget) (*Limiter, error) {
	l := &Limiter{
		buckets: make(map[string]*bucket, len(budgets)),
		now:     time.Now,
	}
	for _, b := range budgets {
		if b.ID == "" {
			return nil, fmt.Errorf("ratelimit: budget with empty id")
		}
		if b.Limit <= 0 {
			return nil, fmt.Errorf("ratelimit: budget %q has non-positive limit %d", b.ID, b.Limit)
		}
		if b.Interval <= 0 {
			return nil, fmt.Errorf("ratelimit: budget %q has non-positive interval %v", b.ID, b.Interval)
		}
		if _, dup := l.buckets[b.ID]; dup {
			return nil, fmt.Errorf("ratelimit: duplicate budget id %q", b.ID)
		}
		l.buckets[b.ID] = &bucket{limit: b.Limit, interval: b.Interval}
	}
	return l, nil
}

// Acquire consumes one slot from the endpoint's budget, blocking until a
// slot frees inside the trailing window or ctx is cancelled. Requests are
// never dropped. An id without a configured budget is an error: silently
// unmetered traffic is how accounts get throttled by the broker.
func (l *Limiter) Acquire(ctx context.Context, id string) error {
	for {
		l.mu.Lock()
		b, ok := l.buckets[id]
		if !ok {
			l.mu.Unlock()
			return fmt.Errorf("ratelimit: no budget configured for endpoint %q", id)
		}
		now := l.now()
		for b.stamps.Len() > 0 && now.Sub(b.stamps.Front()) >= b.interval {
			b.stamps.PopFront()
		}
		if b.stamps.Len() < b.limit {
			b.stamps.PushBack(now)
			l.mu.Unlock()
			return nil
		}
		// Oldest stamp leaves the window first; sleep until it does.
		wait := b.interval - now.Sub(b.stamps.Front())
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Configured reports whether a budget exists for the given endpoint id.
func (l *Limiter) Configured(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.buckets[id]
	return ok
}

// Pending returns how many admissions currently sit inside the trailing
// window for the given endpoint. Used by status endpoints; returns zero
// for unknown ids.
func (l *Limiter) Pending(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[id]
	if !ok {
		return 0
	}
	now := l.now()
	for b.stamps.Len() > 0 && now.Sub(b.stamps.Front()) >= b.interval {
		b.stamps.PopFront()
	}
	return b.stamps.Len()
}
