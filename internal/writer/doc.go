// Package writer persists change events to PostgreSQL.
//
// The ChangeWriter consumes a router subscription, batches rows, and
// flushes on size or interval. Inserts carry ON CONFLICT DO NOTHING on
// the event id, so retries and replays never duplicate journal rows.
package writer
