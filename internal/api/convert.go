package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/t212-bridge/internal/model"
)

// ParseTimestamp parses a broker timestamp. The API mixes RFC 3339 with a
// zoneless variant across endpoints; both are accepted. An empty string
// is a valid "never" and parses to the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// orZero collapses a NullDecimal to its value, with null reading as zero.
func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Decimal{}
	}
	return d.Decimal
}

// ToModel converts an APIOrder into a model.Order. A missing id or ticker
// makes the record unusable as a snapshot entry and fails the conversion;
// unknown status/type strings just map to the Unknown variants.
func (o *APIOrder) ToModel() (model.Order, error) {
	if o.ID == 0 {
		return model.Order{}, &APIError{Kind: KindParse, Message: "order record missing id"}
	}
	if o.Ticker == "" {
		return model.Order{}, &APIError{Kind: KindParse, Message: fmt.Sprintf("order %d missing ticker", o.ID)}
	}
	createdAt, err := ParseTimestamp(o.CreationTime)
	if err != nil {
		return model.Order{}, &APIError{Kind: KindParse, Message: fmt.Sprintf("order %d: %v", o.ID, err), Err: err}
	}

	return model.Order{
		ID:             o.ID,
		Ticker:         o.Ticker,
		Type:           model.ParseOrderType(o.Type),
		Status:         model.ParseOrderStatus(o.Status),
		Quantity:       orZero(o.Quantity),
		FilledQuantity: orZero(o.FilledQuantity),
		FilledValue:    orZero(o.FilledValue),
		LimitPrice:     orZero(o.LimitPrice),
		StopPrice:      orZero(o.StopPrice),
		TimeValidity:   o.TimeValidity,
		CreatedAt:      createdAt,
	}, nil
}

// ToModel converts an APICash into a model.CashBalance keyed by the
// account currency. The endpoint does not echo the currency; it comes
// from account info.
func (c *APICash) ToModel(currency string) model.CashBalance {
	return model.CashBalance{
		Currency: currency,
		Total:    c.Total,
		Free:     c.Free,
		Blocked:  orZero(c.Blocked),
		Invested: c.Invested,
		PieCash:  orZero(c.PieCash),
		PPL:      c.PPL,
		Result:   c.Result,
	}
}

// ToModel converts an APIPosition into a model.Position.
func (p *APIPosition) ToModel() (model.Position, error) {
	if p.Ticker == "" {
		return model.Position{}, &APIError{Kind: KindParse, Message: "position record missing ticker"}
	}
	filled, err := ParseTimestamp(p.InitialFillDate)
	if err != nil {
		return model.Position{}, &APIError{Kind: KindParse, Message: fmt.Sprintf("position %s: %v", p.Ticker, err), Err: err}
	}

	return model.Position{
		Ticker:          p.Ticker,
		Quantity:        p.Quantity,
		AveragePrice:    p.AveragePrice,
		CurrentPrice:    p.CurrentPrice,
		PPL:             p.PPL,
		FxPPL:           orZero(p.FxPPL),
		MaxBuy:          orZero(p.MaxBuy),
		MaxSell:         orZero(p.MaxSell),
		PieQuantity:     orZero(p.PieQuantity),
		InitialFillDate: filled,
	}, nil
}

// ToQuote derives the last-price proxy from a position. The broker has no
// market data endpoint; a held position's current price is the only
// price signal it reports.
func (p *APIPosition) ToQuote() (model.Quote, error) {
	if p.Ticker == "" {
		return model.Quote{}, &APIError{Kind: KindParse, Message: "position record missing ticker"}
	}
	return model.Quote{
		Ticker: p.Ticker,
		Price:  p.CurrentPrice,
	}, nil
}

// ToModel converts an APIInstrument into a model.Instrument.
func (i *APIInstrument) ToModel() (model.Instrument, error) {
	if i.Ticker == "" {
		return model.Instrument{}, &APIError{Kind: KindParse, Message: "instrument record missing ticker"}
	}
	addedOn, err := ParseTimestamp(i.AddedOn)
	if err != nil {
		return model.Instrument{}, &APIError{Kind: KindParse, Message: fmt.Sprintf("instrument %s: %v", i.Ticker, err), Err: err}
	}

	return model.Instrument{
		Ticker:            i.Ticker,
		Name:              i.Name,
		ShortName:         i.ShortName,
		ISIN:              i.ISIN,
		CurrencyCode:      i.CurrencyCode,
		Type:              i.Type,
		MinTradeQuantity:  orZero(i.MinTradeQuantity),
		MaxOpenQuantity:   orZero(i.MaxOpenQuantity),
		WorkingScheduleID: i.WorkingScheduleID,
		AddedOn:           addedOn,
	}, nil
}
