// Package router fans change events out from the poll loops to their
// consumers: the database writer, the stream hub, and anything else
// that subscribes.
//
// Each subscription owns a growable FIFO buffer, so one slow consumer
// never blocks a poll loop or starves the others. Changes for a single
// resource are published by exactly one loop and buffers preserve
// insertion order, which keeps delivery per resource strictly in
// emission order at every subscriber.
package router

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rickgao/t212-bridge/internal/model"
)

// Router delivers published changes to every subscription registered
// for the change's resource.
type Router struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool
	logger *slog.Logger

	published atomic.Int64
	dropped   atomic.Int64
}

// Subscription is one consumer's registration: the resources it wants
// and the buffer its changes queue in.
type Subscription struct {
	name      string
	resources map[model.Resource]bool
	buf       *GrowableBuffer[Change]
}

// Stats is a point-in-time snapshot of router counters.
type Stats struct {
	Published   int64
	Dropped     int64
	Subscribers int
}

// New returns an empty router.
func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Subscribe registers a consumer for the given resources, or for every
// resource when none are named. The name appears in logs only.
func (r *Router) Subscribe(name string, bufSize int, resources ...model.Resource) *Subscription {
	if len(resources) == 0 {
		resources = model.Resources()
	}
	wanted := make(map[model.Resource]bool, len(resources))
	for _, res := range resources {
		wanted[res] = true
	}

	sub := &Subscription{
		name:      name,
		resources: wanted,
		buf:       NewGrowableBuffer[Change](bufSize),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		// Late subscribers get a buffer that is already closed.
		sub.buf.Close()
		return sub
	}
	r.subs = append(r.subs, sub)
	r.logger.Debug("subscriber registered", "name", name, "resources", resources)
	return sub
}

// Unsubscribe removes the subscription and closes its buffer. Queued
// changes stay receivable until drained.
func (r *Router) Unsubscribe(sub *Subscription) {
	r.mu.Lock()
	for i, s := range r.subs {
		if s == sub {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	sub.buf.Close()
}

// Publish delivers ch to every subscription wanting its resource.
func (r *Router) Publish(ch Change) {
	r.published.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subs {
		if !sub.resources[ch.Resource] {
			continue
		}
		if !sub.buf.Send(ch) {
			r.dropped.Add(1)
		}
	}
}

// Close closes every subscription buffer and rejects new subscribers.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, sub := range r.subs {
		sub.buf.Close()
	}
}

// Stats returns current router counters.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Published:   r.published.Load(),
		Dropped:     r.dropped.Load(),
		Subscribers: len(r.subs),
	}
}

// Name returns the label the subscription registered under.
func (s *Subscription) Name() string { return s.name }

// Receive blocks for the next change, returning false once the
// subscription is closed and drained.
func (s *Subscription) Receive() (Change, bool) { return s.buf.Receive() }

// TryReceive returns the next change without blocking.
func (s *Subscription) TryReceive() (Change, bool) { return s.buf.TryReceive() }

// Drain dequeues up to max queued changes without blocking.
func (s *Subscription) Drain(max int) []Change { return s.buf.Drain(max) }

// Len returns the number of queued changes.
func (s *Subscription) Len() int { return s.buf.Len() }

// BufferStats returns the subscription buffer's counters.
func (s *Subscription) BufferStats() BufferStats { return s.buf.Stats() }
