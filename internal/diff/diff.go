package diff

import "time"

// Equaler is the comparison contract snapshot values must satisfy. Equal
// reports structural equality of every field the record carries.
type Equaler[V any] interface {
	Equal(V) bool
}

// Kind classifies a change event.
type Kind int

const (
	Created Kind = iota
	Updated
	Removed
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one observed change for a single key. Old is nil for Created,
// New is nil for Removed, and both are set for Updated. At carries the
// fetch time of the snapshot the change was observed in.
type Event[V Equaler[V]] struct {
	Kind Kind
	Key  string
	Old  *V
	New  *V
	At   time.Time
}

// Snapshot is a keyed collection of records that preserves insertion
// order, so diffs iterate keys the way the broker listed them. It is
// built once per poll cycle and not mutated afterwards.
type Snapshot[V Equaler[V]] struct {
	keys   []string
	values map[string]V
	at     time.Time
}

// NewSnapshot returns an empty snapshot stamped with its fetch time.
func NewSnapshot[V Equaler[V]](at time.Time) *Snapshot[V] {
	return &Snapshot[V]{values: make(map[string]V), at: at}
}

// Set stores a record under key. A new key is appended to the iteration
// order; an existing key keeps its position and has its value replaced.
func (s *Snapshot[V]) Set(key string, value V) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the record stored under key.
func (s *Snapshot[V]) Get(key string) (V, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Snapshot[V]) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Len returns the number of records.
func (s *Snapshot[V]) Len() int {
	return len(s.values)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (s *Snapshot[V]) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// At returns the snapshot's fetch time.
func (s *Snapshot[V]) At() time.Time {
	return s.at
}

// Diff compares two snapshots and returns the changes between them as
// Removed events in prev's iteration order, then Updated and Created
// events in cur's iteration order. Keys present in both snapshots with
// equal values produce no event. Events are stamped with cur's fetch
// time. A nil snapshot is treated as empty.
func Diff[V Equaler[V]](prev, cur *Snapshot[V]) []Event[V] {
	if prev == nil {
		prev = &Snapshot[V]{}
	}
	if cur == nil {
		cur = &Snapshot[V]{}
	}

	var events []Event[V]

	for _, key := range prev.keys {
		if cur.Has(key) {
			continue
		}
		old := prev.values[key]
		events = append(events, Event[V]{Kind: Removed, Key: key, Old: &old, At: cur.at})
	}

	for _, key := range cur.keys {
		old, ok := prev.values[key]
		if !ok {
			continue
		}
		if old.Equal(cur.values[key]) {
			continue
		}
		now := cur.values[key]
		events = append(events, Event[V]{Kind: Updated, Key: key, Old: &old, New: &now, At: cur.at})
	}

	for _, key := range cur.keys {
		if prev.Has(key) {
			continue
		}
		now := cur.values[key]
		events = append(events, Event[V]{Kind: Created, Key: key, New: &now, At: cur.at})
	}

	return events
}
