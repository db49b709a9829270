package writer

import (
	"time"
)

// Config contains configuration for the change writer.
type Config struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		FlushInterval: time.Second,
	}
}

// eventRow represents a row for the change_events table.
type eventRow struct {
	EventID    string // UUID, the dedup key
	Resource   string
	Kind       string
	Key        string
	Old        []byte // JSONB, nil for creations
	New        []byte // JSONB, nil for removals
	FetchedAt  time.Time
	RecordedAt time.Time
}

// Stats holds counters for a writer.
type Stats struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
