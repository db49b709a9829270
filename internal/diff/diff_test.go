package diff

import (
	"testing"
	"time"
)

// rec is a minimal snapshot value for exercising the engine.
type rec struct {
	Status string
	Qty    int
}

func (r rec) Equal(other rec) bool {
	return r.Status == other.Status && r.Qty == other.Qty
}

func snapshotOf(at time.Time, pairs ...[2]string) *Snapshot[rec] {
	s := NewSnapshot[rec](at)
	for _, p := range pairs {
		s.Set(p[0], rec{Status: p[1]})
	}
	return s
}

func kinds(events []Event[rec]) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func keys(events []Event[rec]) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Key
	}
	return out
}

func TestDiffEqualSnapshotsEmitNothing(t *testing.T) {
	at := time.Now()
	prev := snapshotOf(at, [2]string{"1", "WORKING"}, [2]string{"2", "FILLED"})
	cur := snapshotOf(at.Add(time.Second), [2]string{"1", "WORKING"}, [2]string{"2", "FILLED"})

	if events := Diff(prev, cur); len(events) != 0 {
		t.Errorf("Diff() = %d events, want 0", len(events))
	}

	// A snapshot against itself is always silent.
	if events := Diff(prev, prev); len(events) != 0 {
		t.Errorf("Diff(s, s) = %d events, want 0", len(events))
	}
}

func TestDiffOrdering(t *testing.T) {
	prev := NewSnapshot[rec](time.Now())
	prev.Set("a", rec{Status: "WORKING"})
	prev.Set("b", rec{Status: "WORKING"})
	prev.Set("c", rec{Status: "WORKING"})

	cur := NewSnapshot[rec](time.Now())
	cur.Set("a", rec{Status: "WORKING"})
	cur.Set("c", rec{Status: "FILLED"})
	cur.Set("e", rec{Status: "LOCAL"})

	events := Diff(prev, cur)
	if len(events) != 3 {
		t.Fatalf("Diff() = %d events, want 3", len(events))
	}

	wantKinds := []Kind{Removed, Updated, Created}
	wantKeys := []string{"b", "c", "e"}
	for i, e := range events {
		if e.Kind != wantKinds[i] {
			t.Errorf("events[%d].Kind = %v, want %v", i, e.Kind, wantKinds[i])
		}
		if e.Key != wantKeys[i] {
			t.Errorf("events[%d].Key = %q, want %q", i, e.Key, wantKeys[i])
		}
	}
}

func TestDiffFirstCycleCreatesEverything(t *testing.T) {
	cur := NewSnapshot[rec](time.Now())
	cur.Set("10", rec{Status: "WORKING"})
	cur.Set("11", rec{Status: "LOCAL"})

	events := Diff(NewSnapshot[rec](time.Time{}), cur)
	if got, want := keys(events), []string{"10", "11"}; !equalStrings(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	for i, e := range events {
		if e.Kind != Created {
			t.Errorf("events[%d].Kind = %v, want Created", i, e.Kind)
		}
		if e.Old != nil {
			t.Errorf("events[%d].Old = %v, want nil", i, e.Old)
		}
		if e.New == nil {
			t.Errorf("events[%d].New = nil, want value", i)
		}
	}
}

func TestDiffRemovalsFollowPreviousOrder(t *testing.T) {
	// Insertion order is the broker's listing order, deliberately
	// unsorted here.
	prev := NewSnapshot[rec](time.Now())
	prev.Set("z", rec{})
	prev.Set("a", rec{})
	prev.Set("m", rec{})

	events := Diff(prev, NewSnapshot[rec](time.Now()))
	if got, want := keys(events), []string{"z", "a", "m"}; !equalStrings(got, want) {
		t.Errorf("removal keys = %v, want %v", got, want)
	}
	for i, e := range events {
		if e.Kind != Removed {
			t.Errorf("events[%d].Kind = %v, want Removed", i, e.Kind)
		}
		if e.New != nil {
			t.Errorf("events[%d].New = %v, want nil", i, e.New)
		}
	}
}

func TestDiffUpdateCarriesOldAndNew(t *testing.T) {
	prev := NewSnapshot[rec](time.Now())
	prev.Set("7", rec{Status: "WORKING", Qty: 10})
	cur := NewSnapshot[rec](time.Now())
	cur.Set("7", rec{Status: "FILLED", Qty: 10})

	events := Diff(prev, cur)
	if len(events) != 1 {
		t.Fatalf("Diff() = %d events, want 1", len(events))
	}

	e := events[0]
	if e.Kind != Updated {
		t.Fatalf("Kind = %v, want Updated", e.Kind)
	}
	if e.Old == nil || e.Old.Status != "WORKING" {
		t.Errorf("Old = %+v, want status WORKING", e.Old)
	}
	if e.New == nil || e.New.Status != "FILLED" {
		t.Errorf("New = %+v, want status FILLED", e.New)
	}
}

func TestDiffDisappearanceThenReturnIsRemoveThenCreate(t *testing.T) {
	s1 := NewSnapshot[rec](time.Now())
	s1.Set("1", rec{Status: "WORKING"})
	s2 := NewSnapshot[rec](time.Now())
	s3 := NewSnapshot[rec](time.Now())
	s3.Set("1", rec{Status: "FILLED"})

	first := Diff(s1, s2)
	if len(first) != 1 || first[0].Kind != Removed {
		t.Fatalf("cycle 1 = %v, want single Removed", kinds(first))
	}

	second := Diff(s2, s3)
	if len(second) != 1 || second[0].Kind != Created {
		t.Fatalf("cycle 2 = %v, want single Created (never Updated)", kinds(second))
	}
}

func TestDiffEventTimestamp(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	prev := snapshotOf(fetchedAt.Add(-time.Second), [2]string{"1", "WORKING"})
	cur := NewSnapshot[rec](fetchedAt)
	cur.Set("1", rec{Status: "FILLED"})

	events := Diff(prev, cur)
	if len(events) != 1 {
		t.Fatalf("Diff() = %d events, want 1", len(events))
	}
	if !events[0].At.Equal(fetchedAt) {
		t.Errorf("At = %v, want %v", events[0].At, fetchedAt)
	}
}

func TestDiffNilSnapshotsAreEmpty(t *testing.T) {
	cur := NewSnapshot[rec](time.Now())
	cur.Set("1", rec{Status: "LOCAL"})

	if events := Diff(nil, cur); len(events) != 1 || events[0].Kind != Created {
		t.Errorf("Diff(nil, cur) = %v, want single Created", kinds(events))
	}
	if events := Diff(cur, nil); len(events) != 1 || events[0].Kind != Removed {
		t.Errorf("Diff(cur, nil) = %v, want single Removed", kinds(events))
	}
	if events := Diff[rec](nil, nil); len(events) != 0 {
		t.Errorf("Diff(nil, nil) = %d events, want 0", len(events))
	}
}

func TestSnapshotSetKeepsPositionOnReplace(t *testing.T) {
	s := NewSnapshot[rec](time.Now())
	s.Set("a", rec{Qty: 1})
	s.Set("b", rec{Qty: 2})
	s.Set("a", rec{Qty: 3})

	if got, want := s.Keys(), []string{"a", "b"}; !equalStrings(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := s.Get("a"); v.Qty != 3 {
		t.Errorf("Get(a).Qty = %d, want 3", v.Qty)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
