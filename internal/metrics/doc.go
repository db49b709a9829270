// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - HTTP attempts and rate-limit token waits per endpoint
//   - Poll cycle outcomes, durations and emitted changes per resource
//   - State age per resource (seconds since last good snapshot)
//   - Writer batch sizes and stream client counts
//
// Everything hangs off a Metrics value with its own registry; there is
// no package-level state. A nil *Metrics records nothing, so components
// take one without caring whether metrics are enabled.
package metrics
