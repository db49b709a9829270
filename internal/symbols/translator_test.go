package symbols

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rickgao/t212-bridge/internal/model"
)

func TestToCanonicalDerivation(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		want   string
	}{
		{"us equity", "AAPL_US_EQ", "AAPL-USD"},
		{"another us equity", "MSFT_US_EQ", "MSFT-USD"},
		{"no delimiter", "BTC", "BTC-USD"},
		{"single segment after base", "VOD_GB", "VOD-USD"},
	}

	tr := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.ToCanonical(tt.ticker)
			if err != nil {
				t.Fatalf("ToCanonical(%q) error = %v", tt.ticker, err)
			}
			if got != tt.want {
				t.Errorf("ToCanonical(%q) = %q, want %q", tt.ticker, got, tt.want)
			}
		})
	}

	t.Run("empty ticker", func(t *testing.T) {
		if _, err := tr.ToCanonical(""); err == nil {
			t.Error("ToCanonical(\"\") error = nil, want error")
		}
	})
}

func TestToCanonicalCustomQuote(t *testing.T) {
	tr := New(WithDefaultQuote("EUR"))
	got, err := tr.ToCanonical("SAP_DE_EQ")
	if err != nil {
		t.Fatalf("ToCanonical() error = %v", err)
	}
	if got != "SAP-EUR" {
		t.Errorf("ToCanonical() = %q, want SAP-EUR", got)
	}
}

func TestInstrumentCurrencyBecomesQuote(t *testing.T) {
	tr := New(WithInstruments([]model.Instrument{
		{Ticker: "VOD_GB_EQ", CurrencyCode: "GBP"},
		{Ticker: "AAPL_US_EQ", CurrencyCode: "USD"},
	}))

	got, err := tr.ToCanonical("VOD_GB_EQ")
	if err != nil {
		t.Fatalf("ToCanonical() error = %v", err)
	}
	if got != "VOD-GBP" {
		t.Errorf("ToCanonical(VOD_GB_EQ) = %q, want VOD-GBP", got)
	}

	broker, err := tr.ToBroker("VOD-GBP")
	if err != nil {
		t.Fatalf("ToBroker() error = %v", err)
	}
	if broker != "VOD_GB_EQ" {
		t.Errorf("ToBroker(VOD-GBP) = %q, want VOD_GB_EQ", broker)
	}
}

func TestOverridesWinBothDirections(t *testing.T) {
	tr := New(
		WithInstruments([]model.Instrument{{Ticker: "AAPL_US_EQ", CurrencyCode: "USD"}}),
		WithOverrides(map[string]string{"AAPL_US_EQ": "APPLE-USD"}),
	)

	pair, err := tr.ToCanonical("AAPL_US_EQ")
	if err != nil {
		t.Fatalf("ToCanonical() error = %v", err)
	}
	if pair != "APPLE-USD" {
		t.Errorf("ToCanonical() = %q, want override APPLE-USD", pair)
	}

	broker, err := tr.ToBroker("APPLE-USD")
	if err != nil {
		t.Fatalf("ToBroker() error = %v", err)
	}
	if broker != "AAPL_US_EQ" {
		t.Errorf("ToBroker() = %q, want AAPL_US_EQ", broker)
	}
}

func TestToBrokerUnknownPair(t *testing.T) {
	tr := New()
	_, err := tr.ToBroker("AAPL-USD")
	if !errors.Is(err, ErrUnknownPair) {
		t.Errorf("ToBroker() error = %v, want ErrUnknownPair", err)
	}
}

func TestReverseCollisionKeepsFirst(t *testing.T) {
	// Two tickers sharing base and currency collapse to one pair; the
	// first registration owns the reverse mapping.
	tr := New(WithInstruments([]model.Instrument{
		{Ticker: "AAPL_US_EQ", CurrencyCode: "USD"},
		{Ticker: "AAPL_EQ", CurrencyCode: "USD"},
	}))

	broker, err := tr.ToBroker("AAPL-USD")
	if err != nil {
		t.Fatalf("ToBroker() error = %v", err)
	}
	if broker != "AAPL_US_EQ" {
		t.Errorf("ToBroker() = %q, want first registration AAPL_US_EQ", broker)
	}
}

func TestParseOverridesJSON(t *testing.T) {
	data := []byte(`{"AAPL_US_EQ": "AAPL-USD", "TSLA_US_EQ": "TSLA-USD"}`)
	got, err := ParseOverrides(data)
	if err != nil {
		t.Fatalf("ParseOverrides() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got["AAPL_US_EQ"] != "AAPL-USD" {
		t.Errorf("AAPL_US_EQ = %q, want AAPL-USD", got["AAPL_US_EQ"])
	}
}

func TestParseOverridesLines(t *testing.T) {
	data := []byte(`# broker ticker to canonical pair

AAPL_US_EQ: AAPL-USD
TSLA_US_EQ:  TSLA-USD
`)
	got, err := ParseOverrides(data)
	if err != nil {
		t.Fatalf("ParseOverrides() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got["TSLA_US_EQ"] != "TSLA-USD" {
		t.Errorf("TSLA_US_EQ = %q, want TSLA-USD", got["TSLA_US_EQ"])
	}
}

func TestParseOverridesMalformedLine(t *testing.T) {
	_, err := ParseOverrides([]byte("AAPL_US_EQ AAPL-USD"))
	if err == nil {
		t.Error("ParseOverrides() error = nil, want error for missing colon")
	}
}

func TestParseOverridesEmpty(t *testing.T) {
	got, err := ParseOverrides([]byte("  \n"))
	if err != nil {
		t.Fatalf("ParseOverrides() error = %v", err)
	}
	if got != nil {
		t.Errorf("ParseOverrides() = %v, want nil", got)
	}
}

func TestLoadOverridesFile(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.txt")
		if err := os.WriteFile(path, []byte("AAPL_US_EQ: AAPL-USD\n"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		got, err := LoadOverridesFile(path)
		if err != nil {
			t.Fatalf("LoadOverridesFile() error = %v", err)
		}
		if got["AAPL_US_EQ"] != "AAPL-USD" {
			t.Errorf("AAPL_US_EQ = %q, want AAPL-USD", got["AAPL_US_EQ"])
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		got, err := LoadOverridesFile(filepath.Join(t.TempDir(), "absent.txt"))
		if err != nil {
			t.Fatalf("LoadOverridesFile() error = %v, want nil for missing file", err)
		}
		if got != nil {
			t.Errorf("LoadOverridesFile() = %v, want nil", got)
		}
	})
}
