// Package tracker keeps the engine's last known-good view of every
// polled resource for queries.
//
// Poll loops install a full snapshot after each successful fetch; a
// failed fetch installs nothing, so readers keep seeing the previous
// state and its age simply grows until the next success. Snapshots are
// immutable once built, so the tracker stores them by pointer and
// copies values out on read.
package tracker

import (
	"sync"
	"time"

	"github.com/rickgao/t212-bridge/internal/diff"
	"github.com/rickgao/t212-bridge/internal/model"
)

// Tracker holds the latest snapshot per resource.
type Tracker struct {
	mu          sync.RWMutex
	orders      *diff.Snapshot[model.Order]
	cash        *diff.Snapshot[model.CashBalance]
	positions   *diff.Snapshot[model.Position]
	instruments *diff.Snapshot[model.Instrument]
	quotes      *diff.Snapshot[model.Quote]
}

// New returns a tracker with no state. Every resource reports unknown
// staleness until its first snapshot lands.
func New() *Tracker {
	return &Tracker{}
}

// SetOrders installs the latest orders snapshot. Nil is ignored.
func (t *Tracker) SetOrders(s *diff.Snapshot[model.Order]) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.orders = s
	t.mu.Unlock()
}

// SetCash installs the latest cash snapshot. Nil is ignored.
func (t *Tracker) SetCash(s *diff.Snapshot[model.CashBalance]) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.cash = s
	t.mu.Unlock()
}

// SetPositions installs the latest positions snapshot. Nil is ignored.
func (t *Tracker) SetPositions(s *diff.Snapshot[model.Position]) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.positions = s
	t.mu.Unlock()
}

// SetInstruments installs the latest instruments snapshot. Nil is ignored.
func (t *Tracker) SetInstruments(s *diff.Snapshot[model.Instrument]) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.instruments = s
	t.mu.Unlock()
}

// SetQuotes installs the latest quotes snapshot. Nil is ignored.
func (t *Tracker) SetQuotes(s *diff.Snapshot[model.Quote]) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.quotes = s
	t.mu.Unlock()
}

// Orders returns the last known orders in snapshot order.
func (t *Tracker) Orders() []model.Order {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotValues(t.orders)
}

// Order returns the last known state of one order by key.
func (t *Tracker) Order(key string) (model.Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotGet(t.orders, key)
}

// Cash returns the last known balances in snapshot order.
func (t *Tracker) Cash() []model.CashBalance {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotValues(t.cash)
}

// CashFor returns the last known balance for one currency.
func (t *Tracker) CashFor(currency string) (model.CashBalance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotGet(t.cash, currency)
}

// Positions returns the last known positions in snapshot order.
func (t *Tracker) Positions() []model.Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotValues(t.positions)
}

// Position returns the last known position for one ticker.
func (t *Tracker) Position(ticker string) (model.Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotGet(t.positions, ticker)
}

// Instruments returns the last known instruments in snapshot order.
func (t *Tracker) Instruments() []model.Instrument {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotValues(t.instruments)
}

// Instrument returns the last known metadata for one ticker.
func (t *Tracker) Instrument(ticker string) (model.Instrument, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotGet(t.instruments, ticker)
}

// Quotes returns the last known quotes in snapshot order.
func (t *Tracker) Quotes() []model.Quote {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotValues(t.quotes)
}

// Quote returns the last known price for one ticker.
func (t *Tracker) Quote(ticker string) (model.Quote, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotGet(t.quotes, ticker)
}

// UpdatedAt returns the fetch time of the resource's current snapshot,
// or false when no snapshot has landed yet.
func (t *Tracker) UpdatedAt(res model.Resource) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch res {
	case model.ResourceOrders:
		if t.orders != nil {
			return t.orders.At(), true
		}
	case model.ResourceCash:
		if t.cash != nil {
			return t.cash.At(), true
		}
	case model.ResourcePositions:
		if t.positions != nil {
			return t.positions.At(), true
		}
	case model.ResourceInstruments:
		if t.instruments != nil {
			return t.instruments.At(), true
		}
	case model.ResourceQuotes:
		if t.quotes != nil {
			return t.quotes.At(), true
		}
	}
	return time.Time{}, false
}

// Staleness returns how old the resource's state is at now. Between
// snapshot installs the value only grows.
func (t *Tracker) Staleness(res model.Resource, now time.Time) (time.Duration, bool) {
	at, ok := t.UpdatedAt(res)
	if !ok {
		return 0, false
	}
	return now.Sub(at), true
}

// Count returns the number of records in the resource's current snapshot.
func (t *Tracker) Count(res model.Resource) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch res {
	case model.ResourceOrders:
		if t.orders != nil {
			return t.orders.Len()
		}
	case model.ResourceCash:
		if t.cash != nil {
			return t.cash.Len()
		}
	case model.ResourcePositions:
		if t.positions != nil {
			return t.positions.Len()
		}
	case model.ResourceInstruments:
		if t.instruments != nil {
			return t.instruments.Len()
		}
	case model.ResourceQuotes:
		if t.quotes != nil {
			return t.quotes.Len()
		}
	}
	return 0
}

func snapshotValues[V diff.Equaler[V]](s *diff.Snapshot[V]) []V {
	if s == nil {
		return nil
	}
	out := make([]V, 0, s.Len())
	for _, key := range s.Keys() {
		v, _ := s.Get(key)
		out = append(out, v)
	}
	return out
}

func snapshotGet[V diff.Equaler[V]](s *diff.Snapshot[V], key string) (V, bool) {
	if s == nil {
		var zero V
		return zero, false
	}
	return s.Get(key)
}
