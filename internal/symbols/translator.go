// Package symbols maps Trading212 instrument tickers to canonical
// BASE-QUOTE trading pairs and back.
//
// Resolution order is fixed: explicit overrides from a mapping file win
// in both directions, then pairs learned from instrument metadata, then
// a derivation rule for tickers never seen before. All tables are built
// at construction and never mutated, so lookups need no locking.
package symbols

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rickgao/t212-bridge/internal/model"
)

// DefaultQuote is the quote currency assumed when neither an override
// nor instrument metadata supplies one.
const DefaultQuote = "USD"

// ErrUnknownPair is returned by ToBroker for pairs with no known broker
// ticker. The derivation rule is not reversible, so only overridden or
// learned pairs resolve.
var ErrUnknownPair = errors.New("unknown trading pair")

// Translator converts between broker tickers and canonical pairs.
type Translator struct {
	toCanonical  map[string]string
	toBroker     map[string]string
	defaultQuote string
	logger       *slog.Logger
}

// Option configures a Translator.
type Option func(*builder)

type builder struct {
	overrides    map[string]string
	instruments  []model.Instrument
	defaultQuote string
	logger       *slog.Logger
}

// WithOverrides supplies explicit broker-ticker to pair mappings. They
// take precedence over every other rule, in both directions.
func WithOverrides(overrides map[string]string) Option {
	return func(b *builder) {
		b.overrides = overrides
	}
}

// WithInstruments registers instrument metadata so pairs pick up each
// instrument's own currency code as quote.
func WithInstruments(instruments []model.Instrument) Option {
	return func(b *builder) {
		b.instruments = instruments
	}
}

// WithDefaultQuote sets the quote currency for the derivation rule.
func WithDefaultQuote(quote string) Option {
	return func(b *builder) {
		b.defaultQuote = quote
	}
}

// WithLogger sets the logger used to report mapping collisions.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// New builds a Translator. Instrument-derived entries are installed
// first, in slice order; overrides are applied last and displace
// anything they collide with. Within one layer the first mapping for a
// pair wins and later ones are logged and dropped.
func New(opts ...Option) *Translator {
	b := &builder{
		defaultQuote: DefaultQuote,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	t := &Translator{
		toCanonical:  make(map[string]string),
		toBroker:     make(map[string]string),
		defaultQuote: b.defaultQuote,
		logger:       b.logger,
	}

	for _, inst := range b.instruments {
		if inst.Ticker == "" {
			continue
		}
		quote := inst.CurrencyCode
		if quote == "" {
			quote = t.defaultQuote
		}
		pair := derivePair(inst.Ticker, quote)
		t.toCanonical[inst.Ticker] = pair
		if existing, ok := t.toBroker[pair]; ok {
			t.logger.Warn("pair maps to multiple tickers, keeping first",
				"pair", pair, "kept", existing, "dropped", inst.Ticker)
			continue
		}
		t.toBroker[pair] = inst.Ticker
	}

	// Deterministic application order for override collisions.
	tickers := make([]string, 0, len(b.overrides))
	for ticker := range b.overrides {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	seen := make(map[string]string)
	for _, ticker := range tickers {
		pair := b.overrides[ticker]
		if ticker == "" || pair == "" {
			continue
		}
		t.toCanonical[ticker] = pair
		if first, ok := seen[pair]; ok {
			t.logger.Warn("override pair maps to multiple tickers, keeping first",
				"pair", pair, "kept", first, "dropped", ticker)
			continue
		}
		seen[pair] = ticker
		t.toBroker[pair] = ticker
	}

	return t
}

// ToCanonical returns the canonical pair for a broker ticker. Tickers
// with no override or learned entry fall back to the derivation rule:
// the segment before the first underscore, paired with the default
// quote currency.
func (t *Translator) ToCanonical(brokerTicker string) (string, error) {
	if brokerTicker == "" {
		return "", fmt.Errorf("empty broker ticker")
	}
	if pair, ok := t.toCanonical[brokerTicker]; ok {
		return pair, nil
	}
	return derivePair(brokerTicker, t.defaultQuote), nil
}

// ToBroker returns the broker ticker for a canonical pair, or
// ErrUnknownPair when no override or instrument taught one.
func (t *Translator) ToBroker(pair string) (string, error) {
	if ticker, ok := t.toBroker[pair]; ok {
		return ticker, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPair, pair)
}

// Known returns the number of broker tickers with explicit mappings,
// from overrides or instrument metadata.
func (t *Translator) Known() int {
	return len(t.toCanonical)
}

// derivePair builds BASE-QUOTE from a broker ticker taking the segment
// before the first underscore as base.
func derivePair(brokerTicker, quote string) string {
	base := brokerTicker
	if i := strings.Index(brokerTicker, "_"); i > 0 {
		base = brokerTicker[:i]
	}
	return base + "-" + quote
}
