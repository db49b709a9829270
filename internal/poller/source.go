package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/t212-bridge/internal/api"
	"github.com/rickgao/t212-bridge/internal/diff"
	"github.com/rickgao/t212-bridge/internal/model"
	"github.com/rickgao/t212-bridge/internal/router"
	"github.com/rickgao/t212-bridge/internal/tracker"
)

// Source is one pollable resource. Poll fetches the current snapshot,
// diffs it against the source's previous one, and returns the changes.
// Sources are not safe for concurrent Poll calls; each belongs to
// exactly one loop.
type Source interface {
	Resource() model.Resource
	Poll(ctx context.Context) ([]router.Change, error)
}

// PairResolver maps broker tickers to canonical pairs. Sources built
// with one annotate every change with the record's pair.
// *symbols.Translator satisfies it.
type PairResolver interface {
	ToCanonical(brokerTicker string) (string, error)
}

// source carries the generic fetch-diff cycle shared by every resource.
type source[V diff.Equaler[V]] struct {
	resource model.Resource
	fetch    func(ctx context.Context) (*diff.Snapshot[V], error)
	install  func(*diff.Snapshot[V])
	pairOf   func(V) string
	prev     *diff.Snapshot[V]
	logger   *slog.Logger
}

func (s *source[V]) Resource() model.Resource { return s.resource }

func (s *source[V]) Poll(ctx context.Context) ([]router.Change, error) {
	cur, err := s.fetch(ctx)
	if err != nil {
		// A vanished collection is an empty one: every held record
		// gets a removal, and the empty snapshot becomes last-good.
		if !api.IsNotFound(err) {
			return nil, err
		}
		cur = diff.NewSnapshot[V](time.Now().UTC())
	}

	events := diff.Diff(s.prev, cur)
	changes := make([]router.Change, 0, len(events))
	for _, e := range events {
		ch, err := router.MakeChange(s.resource, e)
		if err != nil {
			s.logger.Warn("dropping unencodable change",
				"resource", s.resource, "key", e.Key, "err", err)
			continue
		}
		if s.pairOf != nil {
			if rec := e.New; rec != nil {
				ch.Pair = s.pairOf(*rec)
			} else if e.Old != nil {
				ch.Pair = s.pairOf(*e.Old)
			}
		}
		changes = append(changes, ch)
	}

	s.prev = cur
	if s.install != nil {
		s.install(cur)
	}
	return changes, nil
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// canonicalPair resolves a ticker's pair for envelope annotation; an
// unresolvable ticker just leaves the annotation empty.
func canonicalPair(pairs PairResolver, ticker string) string {
	pair, err := pairs.ToCanonical(ticker)
	if err != nil {
		return ""
	}
	return pair
}

// NewOrdersSource polls the open orders collection, keyed by order id.
func NewOrdersSource(client *api.Client, pairs PairResolver, track *tracker.Tracker, logger *slog.Logger) Source {
	logger = ensureLogger(logger)
	s := &source[model.Order]{
		resource: model.ResourceOrders,
		logger:   logger,
	}
	if pairs != nil {
		s.pairOf = func(o model.Order) string { return canonicalPair(pairs, o.Ticker) }
	}
	if track != nil {
		s.install = track.SetOrders
	}
	s.fetch = func(ctx context.Context) (*diff.Snapshot[model.Order], error) {
		raw, err := client.GetOrders(ctx)
		if err != nil {
			return nil, err
		}
		snap := diff.NewSnapshot[model.Order](time.Now().UTC())
		for i := range raw {
			order, err := raw[i].ToModel()
			if err != nil {
				logger.Warn("dropping unparseable order", "id", raw[i].ID, "err", err)
				continue
			}
			snap.Set(order.Key(), order)
		}
		return snap, nil
	}
	return s
}

// NewCashSource polls the account's cash balances, keyed by currency.
// The broker reports one account currency, fetched once at startup.
func NewCashSource(client *api.Client, currency string, track *tracker.Tracker, logger *slog.Logger) Source {
	logger = ensureLogger(logger)
	if currency == "" {
		currency = "USD"
	}
	s := &source[model.CashBalance]{
		resource: model.ResourceCash,
		logger:   logger,
	}
	if track != nil {
		s.install = track.SetCash
	}
	s.fetch = func(ctx context.Context) (*diff.Snapshot[model.CashBalance], error) {
		raw, err := client.GetCash(ctx)
		if err != nil {
			return nil, err
		}
		snap := diff.NewSnapshot[model.CashBalance](time.Now().UTC())
		balance := raw.ToModel(currency)
		snap.Set(balance.Currency, balance)
		return snap, nil
	}
	return s
}

// NewPositionsSource polls the portfolio, keyed by instrument ticker.
func NewPositionsSource(client *api.Client, pairs PairResolver, track *tracker.Tracker, logger *slog.Logger) Source {
	logger = ensureLogger(logger)
	s := &source[model.Position]{
		resource: model.ResourcePositions,
		logger:   logger,
	}
	if pairs != nil {
		s.pairOf = func(p model.Position) string { return canonicalPair(pairs, p.Ticker) }
	}
	if track != nil {
		s.install = track.SetPositions
	}
	s.fetch = func(ctx context.Context) (*diff.Snapshot[model.Position], error) {
		raw, err := client.GetPortfolio(ctx)
		if err != nil {
			return nil, err
		}
		snap := diff.NewSnapshot[model.Position](time.Now().UTC())
		for i := range raw {
			pos, err := raw[i].ToModel()
			if err != nil {
				logger.Warn("dropping unparseable position", "ticker", raw[i].Ticker, "err", err)
				continue
			}
			snap.Set(pos.Ticker, pos)
		}
		return snap, nil
	}
	return s
}

// NewQuotesSource derives last prices from the portfolio. The broker has
// no market data endpoint; the current price on each open position is
// the only price signal, so this source shares the portfolio budget
// with the positions loop and emits only when a price moves.
func NewQuotesSource(client *api.Client, pairs PairResolver, track *tracker.Tracker, logger *slog.Logger) Source {
	logger = ensureLogger(logger)
	s := &source[model.Quote]{
		resource: model.ResourceQuotes,
		logger:   logger,
	}
	if pairs != nil {
		s.pairOf = func(q model.Quote) string { return canonicalPair(pairs, q.Ticker) }
	}
	if track != nil {
		s.install = track.SetQuotes
	}
	s.fetch = func(ctx context.Context) (*diff.Snapshot[model.Quote], error) {
		raw, err := client.GetPortfolio(ctx)
		if err != nil {
			return nil, err
		}
		snap := diff.NewSnapshot[model.Quote](time.Now().UTC())
		for i := range raw {
			quote, err := raw[i].ToQuote()
			if err != nil {
				logger.Warn("dropping unparseable quote", "ticker", raw[i].Ticker, "err", err)
				continue
			}
			snap.Set(quote.Ticker, quote)
		}
		return snap, nil
	}
	return s
}

// NewInstrumentsSource polls the tradeable universe, keyed by ticker.
func NewInstrumentsSource(client *api.Client, pairs PairResolver, track *tracker.Tracker, logger *slog.Logger) Source {
	logger = ensureLogger(logger)
	s := &source[model.Instrument]{
		resource: model.ResourceInstruments,
		logger:   logger,
	}
	if pairs != nil {
		s.pairOf = func(i model.Instrument) string { return canonicalPair(pairs, i.Ticker) }
	}
	if track != nil {
		s.install = track.SetInstruments
	}
	s.fetch = func(ctx context.Context) (*diff.Snapshot[model.Instrument], error) {
		raw, err := client.GetInstruments(ctx)
		if err != nil {
			return nil, err
		}
		snap := diff.NewSnapshot[model.Instrument](time.Now().UTC())
		for i := range raw {
			inst, err := raw[i].ToModel()
			if err != nil {
				logger.Warn("dropping unparseable instrument", "ticker", raw[i].Ticker, "err", err)
				continue
			}
			snap.Set(inst.Ticker, inst)
		}
		return snap, nil
	}
	return s
}
