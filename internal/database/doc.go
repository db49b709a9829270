// Package database provides PostgreSQL connection pool management.
//
// The bridge uses a single optional pool for the change-event journal.
// When no database block is configured the daemon runs without one and
// everything here stays unused.
package database
