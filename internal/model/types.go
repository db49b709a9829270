package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// Resource identifies one polled resource collection.
type Resource string

const (
	ResourceOrders      Resource = "orders"
	ResourceCash        Resource = "cash"
	ResourcePositions   Resource = "positions"
	ResourceInstruments Resource = "instruments"
	ResourceQuotes      Resource = "quotes"
)

// Resources lists every resource in a fixed order, for iteration in
// metrics, subscriptions and config validation.
func Resources() []Resource {
	return []Resource{
		ResourceOrders,
		ResourceCash,
		ResourcePositions,
		ResourceInstruments,
		ResourceQuotes,
	}
}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	switch r {
	case ResourceOrders, ResourceCash, ResourcePositions, ResourceInstruments, ResourceQuotes:
		return true
	}
	return false
}

// OrderStatus is the closed set of order states the broker reports.
// Anything outside the known set parses to OrderStatusUnknown rather than
// being carried around as a raw string.
type OrderStatus string

const (
	OrderStatusLocal     OrderStatus = "LOCAL"     // accepted, not yet on exchange
	OrderStatusWorking   OrderStatus = "WORKING"   // live on exchange
	OrderStatusFilled    OrderStatus = "FILLED"    // fully executed
	OrderStatusCancelled OrderStatus = "CANCELLED" // cancelled before full fill
	OrderStatusRejected  OrderStatus = "REJECTED"  // refused by broker or exchange
	OrderStatusUnknown   OrderStatus = "UNKNOWN"   // unrecognized broker value
)

// ParseOrderStatus maps a broker status string onto the closed set.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case OrderStatusLocal, OrderStatusWorking, OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return OrderStatus(s)
	default:
		return OrderStatusUnknown
	}
}

// Terminal reports whether the status is final: no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// OrderType is the closed set of order kinds the broker supports.
type OrderType string

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
	OrderTypeUnknown   OrderType = "UNKNOWN"
)

// ParseOrderType maps a broker order-type string onto the closed set.
func ParseOrderType(s string) OrderType {
	switch OrderType(s) {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
		return OrderType(s)
	default:
		return OrderTypeUnknown
	}
}

// -----------------------------------------------------------------------------
// Account Records
// -----------------------------------------------------------------------------

// Order is one equity order as reported by the broker.
type Order struct {
	ID             int64           `json:"id"`     // Broker order id
	Ticker         string          `json:"ticker"` // Broker instrument ticker (e.g., "AAPL_US_EQ")
	Type           OrderType       `json:"type"`
	Status         OrderStatus     `json:"status"`
	Quantity       decimal.Decimal `json:"quantity"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	FilledValue    decimal.Decimal `json:"filled_value"`
	LimitPrice     decimal.Decimal `json:"limit_price"` // zero unless LIMIT/STOP_LIMIT
	StopPrice      decimal.Decimal `json:"stop_price"`  // zero unless STOP/STOP_LIMIT
	TimeValidity   string          `json:"time_validity"`
	CreatedAt      time.Time       `json:"created_at"` // Broker creation time
}

// Key returns the snapshot identity key for the order.
func (o Order) Key() string { return strconv.FormatInt(o.ID, 10) }

// Equal reports field-wise equality. Decimal fields compare by value,
// so formatting differences between polls do not register as changes.
func (o Order) Equal(other Order) bool {
	return o.ID == other.ID &&
		o.Ticker == other.Ticker &&
		o.Type == other.Type &&
		o.Status == other.Status &&
		o.Quantity.Equal(other.Quantity) &&
		o.FilledQuantity.Equal(other.FilledQuantity) &&
		o.FilledValue.Equal(other.FilledValue) &&
		o.LimitPrice.Equal(other.LimitPrice) &&
		o.StopPrice.Equal(other.StopPrice) &&
		o.TimeValidity == other.TimeValidity &&
		o.CreatedAt.Equal(other.CreatedAt)
}

// CashBalance is the account's free/blocked/invested funds in one currency.
// The broker reports a single account currency today; the record is still
// keyed by currency code so multi-currency accounts diff cleanly.
type CashBalance struct {
	Currency string          `json:"currency"` // Snapshot key (e.g., "USD")
	Total    decimal.Decimal `json:"total"`
	Free     decimal.Decimal `json:"free"`
	Blocked  decimal.Decimal `json:"blocked"`
	Invested decimal.Decimal `json:"invested"`
	PieCash  decimal.Decimal `json:"pie_cash"` // Funds reserved inside pies
	PPL      decimal.Decimal `json:"ppl"`      // Unrealized profit/loss
	Result   decimal.Decimal `json:"result"`   // Realized result
}

// Equal reports field-wise equality.
func (c CashBalance) Equal(other CashBalance) bool {
	return c.Currency == other.Currency &&
		c.Total.Equal(other.Total) &&
		c.Free.Equal(other.Free) &&
		c.Blocked.Equal(other.Blocked) &&
		c.Invested.Equal(other.Invested) &&
		c.PieCash.Equal(other.PieCash) &&
		c.PPL.Equal(other.PPL) &&
		c.Result.Equal(other.Result)
}

// Position is one open portfolio position.
type Position struct {
	Ticker          string          `json:"ticker"` // Snapshot key (broker ticker)
	Quantity        decimal.Decimal `json:"quantity"`
	AveragePrice    decimal.Decimal `json:"average_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	PPL             decimal.Decimal `json:"ppl"`    // Unrealized profit/loss
	FxPPL           decimal.Decimal `json:"fx_ppl"` // FX component of PPL
	MaxBuy          decimal.Decimal `json:"max_buy"`
	MaxSell         decimal.Decimal `json:"max_sell"`
	PieQuantity     decimal.Decimal `json:"pie_quantity"` // Portion held inside pies
	InitialFillDate time.Time       `json:"initial_fill_date"`
}

// Equal reports field-wise equality.
func (p Position) Equal(other Position) bool {
	return p.Ticker == other.Ticker &&
		p.Quantity.Equal(other.Quantity) &&
		p.AveragePrice.Equal(other.AveragePrice) &&
		p.CurrentPrice.Equal(other.CurrentPrice) &&
		p.PPL.Equal(other.PPL) &&
		p.FxPPL.Equal(other.FxPPL) &&
		p.MaxBuy.Equal(other.MaxBuy) &&
		p.MaxSell.Equal(other.MaxSell) &&
		p.PieQuantity.Equal(other.PieQuantity) &&
		p.InitialFillDate.Equal(other.InitialFillDate)
}

// -----------------------------------------------------------------------------
// Market Data Records
// -----------------------------------------------------------------------------

// Instrument is one tradeable instrument from the broker's universe.
type Instrument struct {
	Ticker            string          `json:"ticker"` // Snapshot key (e.g., "AAPL_US_EQ")
	Name              string          `json:"name"`
	ShortName         string          `json:"short_name"` // Exchange symbol (e.g., "AAPL")
	ISIN              string          `json:"isin"`
	CurrencyCode      string          `json:"currency_code"` // Quote currency for the instrument
	Type              string          `json:"type"`          // "STOCK", "ETF", ...
	MinTradeQuantity  decimal.Decimal `json:"min_trade_quantity"`
	MaxOpenQuantity   decimal.Decimal `json:"max_open_quantity"`
	WorkingScheduleID int64           `json:"working_schedule_id"`
	AddedOn           time.Time       `json:"added_on"`
}

// Equal reports field-wise equality.
func (i Instrument) Equal(other Instrument) bool {
	return i.Ticker == other.Ticker &&
		i.Name == other.Name &&
		i.ShortName == other.ShortName &&
		i.ISIN == other.ISIN &&
		i.CurrencyCode == other.CurrencyCode &&
		i.Type == other.Type &&
		i.MinTradeQuantity.Equal(other.MinTradeQuantity) &&
		i.MaxOpenQuantity.Equal(other.MaxOpenQuantity) &&
		i.WorkingScheduleID == other.WorkingScheduleID &&
		i.AddedOn.Equal(other.AddedOn)
}

// Quote is the broker's last-price proxy for one held instrument. The
// broker exposes no market data feed; the current price on a portfolio
// position is the only price signal available, so quotes exist only for
// tickers with an open position. The record deliberately carries no
// observation timestamp: two quotes are equal when the price is equal,
// otherwise every poll would emit an update.
type Quote struct {
	Ticker string          `json:"ticker"` // Snapshot key (broker ticker)
	Price  decimal.Decimal `json:"price"`
}

// Equal reports price equality by value.
func (q Quote) Equal(other Quote) bool {
	return q.Ticker == other.Ticker && q.Price.Equal(other.Price)
}
