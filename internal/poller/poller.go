package poller

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/t212-bridge/internal/metrics"
	"github.com/rickgao/t212-bridge/internal/model"
	"github.com/rickgao/t212-bridge/internal/router"
)

// Publisher receives changes in the order a loop produced them.
type Publisher interface {
	Publish(router.Change)
}

// PublisherFunc is a function adapter for Publisher.
type PublisherFunc func(router.Change)

func (f PublisherFunc) Publish(ch router.Change) { f(ch) }

// Config holds per-resource poll cadences. Resources without an entry
// use the default cadence.
type Config struct {
	Intervals map[model.Resource]time.Duration
}

// DefaultIntervals returns the default cadence per resource. Orders
// move fastest; the instrument universe barely moves at all.
func DefaultIntervals() map[model.Resource]time.Duration {
	return map[model.Resource]time.Duration{
		model.ResourceOrders:      1 * time.Second,
		model.ResourceCash:        5 * time.Second,
		model.ResourcePositions:   5 * time.Second,
		model.ResourceQuotes:      10 * time.Second,
		model.ResourceInstruments: 5 * time.Minute,
	}
}

// Poller runs one loop per source.
type Poller struct {
	intervals map[model.Resource]time.Duration
	sources   []Source
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New assembles a poller. Interval overrides in cfg are merged over the
// defaults; a nil metrics is fine.
func New(cfg Config, publisher Publisher, sources []Source, logger *slog.Logger, m *metrics.Metrics) *Poller {
	intervals := DefaultIntervals()
	for res, interval := range cfg.Intervals {
		if interval > 0 {
			intervals[res] = interval
		}
	}
	return &Poller{
		intervals: intervals,
		sources:   sources,
		publisher: publisher,
		logger:    ensureLogger(logger),
		metrics:   m,
	}
}

// Interval returns the cadence the poller uses for a resource.
func (p *Poller) Interval(res model.Resource) time.Duration {
	if interval, ok := p.intervals[res]; ok {
		return interval
	}
	return 5 * time.Second
}

// Start launches one loop per source. Each loop polls immediately, then
// keeps fetch starts at least its interval apart.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)

	for _, src := range p.sources {
		src := src
		interval := p.Interval(src.Resource())
		p.group.Go(func() error {
			p.run(ctx, src, interval)
			return nil
		})
		p.logger.Info("poll loop started",
			"resource", src.Resource(), "interval", interval)
	}
	return nil
}

// Stop cancels every loop and waits for them to finish, or gives up
// when ctx expires. In-flight requests run to completion or timeout so
// acquired rate-limit slots stay accounted.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is one resource's loop. Poll failures are logged and the loop
// carries on; only cancellation ends it.
func (p *Poller) run(ctx context.Context, src Source, interval time.Duration) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		p.pollOnce(ctx, src)

		// Next fetch starts no sooner than interval after this one,
		// however long the cycle itself took.
		wait := interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

func (p *Poller) pollOnce(ctx context.Context, src Source) {
	resource := string(src.Resource())
	start := time.Now()

	changes, err := src.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.metrics.CountPollCycle(resource, false)
		p.logger.Warn("poll failed, keeping previous snapshot",
			"resource", resource, "err", err, "duration", time.Since(start))
		return
	}

	for _, ch := range changes {
		p.publisher.Publish(ch)
		p.metrics.CountChange(resource, ch.Kind)
	}

	p.metrics.CountPollCycle(resource, true)
	p.metrics.ObservePollDuration(resource, time.Since(start))

	if len(changes) > 0 {
		p.logger.Debug("poll cycle published changes",
			"resource", resource, "changes", len(changes), "duration", time.Since(start))
	}
}
