package router

import "sync"

// GrowableBuffer is a FIFO queue that grows instead of blocking its
// producer. Poll loops must publish without stalling behind a slow
// consumer, so capacity doubles once the queue passes 70% full and Send
// always succeeds while the buffer is open.
type GrowableBuffer[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int
	tail   int
	count  int
	closed bool

	received  int64
	delivered int64
	resizes   int
}

// BufferStats is a point-in-time snapshot of buffer counters.
type BufferStats struct {
	Len       int
	Cap       int
	Received  int64
	Delivered int64
	Resizes   int
}

// NewGrowableBuffer returns a buffer with the given starting capacity.
func NewGrowableBuffer[T any](capacity int) *GrowableBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	b := &GrowableBuffer[T]{ring: make([]T, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Send enqueues item and wakes one waiting receiver. Returns false once
// the buffer is closed.
func (b *GrowableBuffer[T]) Send(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	threshold := (len(b.ring) * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.ring[b.tail] = item
	b.tail = (b.tail + 1) % len(b.ring)
	b.count++
	b.received++
	b.cond.Signal()
	return true
}

// Receive blocks until an item is available or the buffer is closed and
// drained, in which case it returns false.
func (b *GrowableBuffer[T]) Receive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.pop(), true
}

// TryReceive dequeues without blocking. Returns false when empty.
func (b *GrowableBuffer[T]) TryReceive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.pop(), true
}

// Drain dequeues up to max items in FIFO order without blocking. A max
// of zero or less drains everything queued.
func (b *GrowableBuffer[T]) Drain(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.count
	if n == 0 {
		return nil
	}
	if max > 0 && max < n {
		n = max
	}

	out := make([]T, n)
	for i := range out {
		out[i] = b.pop()
	}
	return out
}

// Close stops accepting sends and wakes every blocked receiver. Items
// already queued remain receivable.
func (b *GrowableBuffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}

// Len returns the number of queued items.
func (b *GrowableBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the current capacity.
func (b *GrowableBuffer[T]) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ring)
}

// Stats returns a copy of the counters.
func (b *GrowableBuffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Len:       b.count,
		Cap:       len(b.ring),
		Received:  b.received,
		Delivered: b.delivered,
		Resizes:   b.resizes,
	}
}

// pop removes the head item. Caller holds the lock and has checked
// count > 0.
func (b *GrowableBuffer[T]) pop() T {
	item := b.ring[b.head]
	var zero T
	b.ring[b.head] = zero
	b.head = (b.head + 1) % len(b.ring)
	b.count--
	b.delivered++
	return item
}

// grow doubles capacity, unwrapping the ring into the new slice. Caller
// holds the lock.
func (b *GrowableBuffer[T]) grow() {
	next := make([]T, len(b.ring)*2)
	if b.count > 0 {
		if b.head < b.tail {
			copy(next, b.ring[b.head:b.tail])
		} else {
			n := copy(next, b.ring[b.head:])
			copy(next[n:], b.ring[:b.tail])
		}
	}
	b.ring = next
	b.head = 0
	b.tail = b.count
	b.resizes++
}
