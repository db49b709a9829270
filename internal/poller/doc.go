// Package poller runs the fetch-diff-publish loops.
//
// One goroutine per resource:
//   - Fetches the resource's full snapshot through the rate-limited client
//   - Diffs it against the loop's previous snapshot
//   - Publishes the resulting changes, in diff order, to the router
//   - Installs the snapshot in the tracker and sleeps until next due
//
// A failed fetch keeps the previous snapshot, so the next diff runs
// against the last known-good state rather than an empty one. Loops
// never share snapshots; the rate limiter is the only state the loops
// contend on.
package poller
