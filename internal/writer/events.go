package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/t212-bridge/internal/metrics"
	"github.com/rickgao/t212-bridge/internal/router"
)

// ChangeWriter consumes change events from a router subscription and
// journals them into the change_events table.
type ChangeWriter struct {
	cfg    Config
	logger *slog.Logger

	// Input from the router
	input *router.Subscription

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []eventRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats   Stats
	metrics *metrics.Metrics
}

// NewChangeWriter creates a new ChangeWriter. The metrics handle may be
// nil.
func NewChangeWriter(
	cfg Config,
	input *router.Subscription,
	db *pgxpool.Pool,
	logger *slog.Logger,
	m *metrics.Metrics,
) *ChangeWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeWriter{
		cfg:     cfg,
		input:   input,
		db:      db,
		logger:  logger,
		metrics: m,
		batch:   make([]eventRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming changes and writing to the database.
func (w *ChangeWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("change writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer. Changes still queued on the
// subscription are drained and flushed under the caller's context.
func (w *ChangeWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping change writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("change writer stopped")
	case <-ctx.Done():
		w.logger.Warn("change writer stop timed out")
	}

	// Final drain and flush
	for {
		changes := w.input.Drain(w.cfg.BatchSize)
		if len(changes) == 0 {
			break
		}
		for _, ch := range changes {
			w.add(ch)
		}
	}
	w.flush(ctx)

	return nil
}

// Stats returns current counters.
func (w *ChangeWriter) Stats() Stats {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.stats
}

// consumeLoop reads from the subscription and accumulates batches.
func (w *ChangeWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			// Use TryReceive with context check for responsiveness
			ch, ok := w.input.TryReceive()
			if !ok {
				// Buffer empty, wait a bit before trying again
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			w.handleChange(ch)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *ChangeWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleChange adds a change to the batch, flushing when full.
func (w *ChangeWriter) handleChange(ch router.Change) {
	if w.add(ch) {
		w.flush(w.ctx)
	}
}

// add transforms and appends a change, reporting whether the batch
// reached its flush threshold.
func (w *ChangeWriter) add(ch router.Change) bool {
	row := w.transform(ch)

	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	w.batch = append(w.batch, row)
	return len(w.batch) >= w.cfg.BatchSize
}

// transform converts a router.Change to an eventRow.
func (w *ChangeWriter) transform(ch router.Change) eventRow {
	return eventRow{
		EventID:    ch.ID,
		Resource:   string(ch.Resource),
		Kind:       ch.Kind,
		Key:        ch.Key,
		Old:        ch.Old,
		New:        ch.New,
		FetchedAt:  ch.FetchedAt,
		RecordedAt: time.Now().UTC(),
	}
}

// flush writes the current batch to the database.
func (w *ChangeWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]eventRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.stats.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.stats.Inserts += int64(len(batch) - conflicts)
	w.stats.Conflicts += int64(conflicts)
	w.stats.Flushes++
	w.batchMu.Unlock()

	w.metrics.ObserveWriterBatch(len(batch))
	w.logger.Debug("flushed changes",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
// Replayed events share an event_id with an existing row and count as
// conflicts rather than duplicating history.
func (w *ChangeWriter) batchInsert(ctx context.Context, rows []eventRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO change_events (event_id, resource, kind, key, old_record, new_record, fetched_at, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (event_id) DO NOTHING
		`, r.EventID, r.Resource, r.Kind, r.Key, r.Old, r.New, r.FetchedAt, r.RecordedAt)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
