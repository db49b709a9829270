package api

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/t212-bridge/internal/model"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2023-01-01T12:00:00Z", time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), false},
		{"rfc3339 with offset", "2023-01-01T12:00:00+02:00", time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"no zone", "2023-01-01T12:00:00", time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), false},
		{"fractional seconds", "2023-01-01T12:00:00.123Z", time.Date(2023, 1, 1, 12, 0, 0, 123000000, time.UTC), false},
		{"empty is zero", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !got.UTC().Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAPIOrderToModel(t *testing.T) {
	t.Run("full order", func(t *testing.T) {
		src := APIOrder{
			ID:             12345,
			Ticker:         "AAPL_US_EQ",
			Type:           "LIMIT",
			Status:         "WORKING",
			Quantity:       nullDec("10"),
			FilledQuantity: nullDec("0"),
			FilledValue:    nullDec("0"),
			LimitPrice:     nullDec("150"),
			TimeValidity:   "DAY",
			CreationTime:   "2023-01-01T12:00:00Z",
		}

		got, err := src.ToModel()
		if err != nil {
			t.Fatalf("ToModel() error = %v", err)
		}

		if got.ID != 12345 {
			t.Errorf("ID = %d, want 12345", got.ID)
		}
		if got.Type != model.OrderTypeLimit {
			t.Errorf("Type = %v, want %v", got.Type, model.OrderTypeLimit)
		}
		if got.Status != model.OrderStatusWorking {
			t.Errorf("Status = %v, want %v", got.Status, model.OrderStatusWorking)
		}
		if !got.LimitPrice.Equal(decimal.RequireFromString("150")) {
			t.Errorf("LimitPrice = %v, want 150", got.LimitPrice)
		}
		if !got.StopPrice.IsZero() {
			t.Errorf("StopPrice = %v, want 0 for absent field", got.StopPrice)
		}
		want := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
		if !got.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		src := APIOrder{Ticker: "AAPL_US_EQ", Status: "WORKING"}
		_, err := src.ToModel()
		if err == nil {
			t.Fatal("ToModel() error = nil, want parse error")
		}
		apiErr, ok := AsAPIError(err)
		if !ok || apiErr.Kind != KindParse {
			t.Errorf("error = %v, want KindParse", err)
		}
	})

	t.Run("missing ticker", func(t *testing.T) {
		src := APIOrder{ID: 1, Status: "WORKING"}
		if _, err := src.ToModel(); err == nil {
			t.Fatal("ToModel() error = nil, want parse error")
		}
	})

	t.Run("bad creation time", func(t *testing.T) {
		src := APIOrder{ID: 1, Ticker: "AAPL_US_EQ", CreationTime: "not-a-time"}
		if _, err := src.ToModel(); err == nil {
			t.Fatal("ToModel() error = nil, want parse error")
		}
	})

	t.Run("unknown status maps not errors", func(t *testing.T) {
		src := APIOrder{ID: 1, Ticker: "AAPL_US_EQ", Status: "PARTIALLY_FILLED", Type: "ICEBERG"}
		got, err := src.ToModel()
		if err != nil {
			t.Fatalf("ToModel() error = %v, want tolerant mapping", err)
		}
		if got.Status != model.OrderStatusUnknown {
			t.Errorf("Status = %v, want %v", got.Status, model.OrderStatusUnknown)
		}
		if got.Type != model.OrderTypeUnknown {
			t.Errorf("Type = %v, want %v", got.Type, model.OrderTypeUnknown)
		}
	})
}

func TestAPICashToModel(t *testing.T) {
	src := APICash{
		Total:    decimal.RequireFromString("10000"),
		Free:     decimal.RequireFromString("8000"),
		Blocked:  nullDec("2000"),
		Invested: decimal.RequireFromString("5000"),
		PPL:      decimal.RequireFromString("100"),
		Result:   decimal.RequireFromString("100"),
	}

	got := src.ToModel("USD")
	if got.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", got.Currency)
	}
	if !got.Blocked.Equal(decimal.RequireFromString("2000")) {
		t.Errorf("Blocked = %v, want 2000", got.Blocked)
	}
	if !got.PieCash.IsZero() {
		t.Errorf("PieCash = %v, want 0 for absent field", got.PieCash)
	}
}

func TestAPIPositionToModel(t *testing.T) {
	src := APIPosition{
		Ticker:          "AAPL_US_EQ",
		Quantity:        decimal.RequireFromString("5"),
		AveragePrice:    decimal.RequireFromString("140"),
		CurrentPrice:    decimal.RequireFromString("150"),
		PPL:             decimal.RequireFromString("50"),
		FxPPL:           nullDec("-1.2"),
		InitialFillDate: "2023-01-01T12:00:00Z",
	}

	got, err := src.ToModel()
	if err != nil {
		t.Fatalf("ToModel() error = %v", err)
	}
	if got.Ticker != "AAPL_US_EQ" {
		t.Errorf("Ticker = %q, want AAPL_US_EQ", got.Ticker)
	}
	if !got.FxPPL.Equal(decimal.RequireFromString("-1.2")) {
		t.Errorf("FxPPL = %v, want -1.2", got.FxPPL)
	}

	t.Run("missing ticker", func(t *testing.T) {
		bad := APIPosition{Quantity: decimal.RequireFromString("5")}
		if _, err := bad.ToModel(); err == nil {
			t.Fatal("ToModel() error = nil, want parse error")
		}
	})
}

func TestAPIPositionToQuote(t *testing.T) {
	src := APIPosition{
		Ticker:       "AAPL_US_EQ",
		CurrentPrice: decimal.RequireFromString("150.25"),
	}

	got, err := src.ToQuote()
	if err != nil {
		t.Fatalf("ToQuote() error = %v", err)
	}
	if got.Ticker != "AAPL_US_EQ" {
		t.Errorf("Ticker = %q, want AAPL_US_EQ", got.Ticker)
	}
	if !got.Price.Equal(decimal.RequireFromString("150.25")) {
		t.Errorf("Price = %v, want 150.25", got.Price)
	}
}

func TestAPIInstrumentToModel(t *testing.T) {
	src := APIInstrument{
		Ticker:            "AAPL_US_EQ",
		Name:              "Apple Inc.",
		ShortName:         "Apple",
		ISIN:              "US0378331005",
		CurrencyCode:      "USD",
		Type:              "EQUITY",
		MinTradeQuantity:  nullDec("0.0001"),
		MaxOpenQuantity:   nullDec("1000000"),
		WorkingScheduleID: 1,
		AddedOn:           "2023-01-01T12:00:00Z",
	}

	got, err := src.ToModel()
	if err != nil {
		t.Fatalf("ToModel() error = %v", err)
	}
	if got.CurrencyCode != "USD" {
		t.Errorf("CurrencyCode = %q, want USD", got.CurrencyCode)
	}
	if !got.MinTradeQuantity.Equal(decimal.RequireFromString("0.0001")) {
		t.Errorf("MinTradeQuantity = %v, want 0.0001", got.MinTradeQuantity)
	}

	t.Run("missing ticker", func(t *testing.T) {
		bad := APIInstrument{Name: "nameless"}
		if _, err := bad.ToModel(); err == nil {
			t.Fatal("ToModel() error = nil, want parse error")
		}
	})
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}
