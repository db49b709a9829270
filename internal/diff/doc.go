// Package diff turns pairs of polled snapshots into ordered change events.
//
// A Snapshot is a keyed, insertion-ordered collection of records taken at
// one fetch. Diff compares two snapshots and emits Removed events first,
// then Updated, then Created. Removals surface before creations so a key
// that disappears and reappears across cycles is reported as a removal
// followed by a creation, never as a spurious update.
//
// Diff is pure: no I/O, no clock reads, and identical inputs always yield
// the identical event sequence.
package diff
