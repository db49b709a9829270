package api

import "github.com/shopspring/decimal"

// APIOrder from GET /api/v0/equity/orders and order placement responses.
// Money fields the broker nulls out for some order types are NullDecimal
// so a market order (no limit price) still unmarshals.
type APIOrder struct {
	ID             int64               `json:"id"`
	Ticker         string              `json:"ticker"`
	Type           string              `json:"type"`
	Status         string              `json:"status"`
	Quantity       decimal.NullDecimal `json:"quantity"`
	FilledQuantity decimal.NullDecimal `json:"filledQuantity"`
	FilledValue    decimal.NullDecimal `json:"filledValue"`
	LimitPrice     decimal.NullDecimal `json:"limitPrice"`
	StopPrice      decimal.NullDecimal `json:"stopPrice"`
	TimeValidity   string              `json:"timeValidity"`
	CreationTime   string              `json:"creationTime"`
}

// APICash from GET /api/v0/equity/account/cash.
type APICash struct {
	Total    decimal.Decimal     `json:"total"`
	Free     decimal.Decimal     `json:"free"`
	Blocked  decimal.NullDecimal `json:"blocked"`
	Invested decimal.Decimal     `json:"invested"`
	PieCash  decimal.NullDecimal `json:"pieCash"`
	PPL      decimal.Decimal     `json:"ppl"`
	Result   decimal.Decimal     `json:"result"`
}

// APIAccountInfo from GET /api/v0/equity/account/info.
type APIAccountInfo struct {
	ID           int64  `json:"id"`
	CurrencyCode string `json:"currencyCode"`
}

// APIPosition from GET /api/v0/equity/portfolio.
type APIPosition struct {
	Ticker          string              `json:"ticker"`
	Quantity        decimal.Decimal     `json:"quantity"`
	AveragePrice    decimal.Decimal     `json:"averagePrice"`
	CurrentPrice    decimal.Decimal     `json:"currentPrice"`
	PPL             decimal.Decimal     `json:"ppl"`
	FxPPL           decimal.NullDecimal `json:"fxPpl"`
	MaxBuy          decimal.NullDecimal `json:"maxBuy"`
	MaxSell         decimal.NullDecimal `json:"maxSell"`
	PieQuantity     decimal.NullDecimal `json:"pieQuantity"`
	InitialFillDate string              `json:"initialFillDate"`
}

// APIInstrument from GET /api/v0/equity/metadata/instruments.
type APIInstrument struct {
	Ticker            string              `json:"ticker"`
	Name              string              `json:"name"`
	ShortName         string              `json:"shortName"`
	ISIN              string              `json:"isin"`
	CurrencyCode      string              `json:"currencyCode"`
	Type              string              `json:"type"`
	MinTradeQuantity  decimal.NullDecimal `json:"minTradeQuantity"`
	MaxOpenQuantity   decimal.NullDecimal `json:"maxOpenQuantity"`
	WorkingScheduleID int64               `json:"workingScheduleId"`
	AddedOn           string              `json:"addedOn"`
}

// HistoryOrdersResponse from GET /api/v0/equity/history/orders.
type HistoryOrdersResponse struct {
	Items        []APIOrder `json:"items"`
	NextPagePath string     `json:"nextPagePath"`
}

// HistoryOrdersOptions configures a GetHistoryOrders request.
type HistoryOrdersOptions struct {
	Cursor int64  // id of the last item seen; zero for the first page
	Limit  int    // page size; broker caps at 50
	Ticker string // optional filter
}

// MarketOrderRequest for POST /api/v0/equity/orders/market. A negative
// quantity sells.
type MarketOrderRequest struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
}

// LimitOrderRequest for POST /api/v0/equity/orders/limit.
type LimitOrderRequest struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	LimitPrice   decimal.Decimal `json:"limitPrice"`
	TimeValidity string          `json:"timeValidity"`
}

// StopOrderRequest for POST /api/v0/equity/orders/stop.
type StopOrderRequest struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	StopPrice    decimal.Decimal `json:"stopPrice"`
	TimeValidity string          `json:"timeValidity"`
}

// StopLimitOrderRequest for POST /api/v0/equity/orders/stop_limit.
type StopLimitOrderRequest struct {
	Ticker       string          `json:"ticker"`
	Quantity     decimal.Decimal `json:"quantity"`
	LimitPrice   decimal.Decimal `json:"limitPrice"`
	StopPrice    decimal.Decimal `json:"stopPrice"`
	TimeValidity string          `json:"timeValidity"`
}
