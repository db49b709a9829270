package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TickerResolver maps a canonical pair to the broker ticker that trades
// it. *symbols.Translator satisfies it.
type TickerResolver interface {
	ToBroker(pair string) (string, error)
}

// GetOrders fetches all working equity orders.
func (c *Client) GetOrders(ctx context.Context) ([]APIOrder, error) {
	var orders []APIOrder
	if err := c.get(ctx, EndpointOrdersList, pathOrders, nil, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches a single order by id. A 404 means the order is no
// longer known to the broker; callers inspect it with IsNotFound.
func (c *Client) GetOrder(ctx context.Context, id int64) (*APIOrder, error) {
	var order APIOrder
	path := fmt.Sprintf("%s/%d", pathOrders, id)
	if err := c.get(ctx, EndpointOrderDetails, path, nil, &order); err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &order, nil
}

// PlaceMarketOrder submits a market order and returns the broker's view
// of it.
func (c *Client) PlaceMarketOrder(ctx context.Context, req MarketOrderRequest) (*APIOrder, error) {
	var order APIOrder
	if err := c.post(ctx, EndpointOrdersExecute, pathOrderMarket, req, &order); err != nil {
		return nil, fmt.Errorf("place market order: %w", err)
	}
	return &order, nil
}

// PlaceLimitOrder submits a limit order.
func (c *Client) PlaceLimitOrder(ctx context.Context, req LimitOrderRequest) (*APIOrder, error) {
	var order APIOrder
	if err := c.post(ctx, EndpointOrdersExecute, pathOrderLimit, req, &order); err != nil {
		return nil, fmt.Errorf("place limit order: %w", err)
	}
	return &order, nil
}

// PlaceStopOrder submits a stop order.
func (c *Client) PlaceStopOrder(ctx context.Context, req StopOrderRequest) (*APIOrder, error) {
	var order APIOrder
	if err := c.post(ctx, EndpointOrdersExecute, pathOrderStop, req, &order); err != nil {
		return nil, fmt.Errorf("place stop order: %w", err)
	}
	return &order, nil
}

// PlaceStopLimitOrder submits a stop-limit order.
func (c *Client) PlaceStopLimitOrder(ctx context.Context, req StopLimitOrderRequest) (*APIOrder, error) {
	var order APIOrder
	if err := c.post(ctx, EndpointOrdersExecute, pathOrderStopLimit, req, &order); err != nil {
		return nil, fmt.Errorf("place stop-limit order: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels a working order by id.
func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d", pathOrders, id)
	if err := c.del(ctx, EndpointOrdersCancel, path); err != nil {
		return fmt.Errorf("cancel order %d: %w", id, err)
	}
	return nil
}

// NewMarketOrderRequest builds a market order body for a canonical pair,
// resolving the broker ticker through r.
func NewMarketOrderRequest(r TickerResolver, pair string, quantity decimal.Decimal) (MarketOrderRequest, error) {
	ticker, err := r.ToBroker(pair)
	if err != nil {
		return MarketOrderRequest{}, fmt.Errorf("resolve %q: %w", pair, err)
	}
	return MarketOrderRequest{Ticker: ticker, Quantity: quantity}, nil
}

// NewLimitOrderRequest builds a limit order body for a canonical pair.
func NewLimitOrderRequest(r TickerResolver, pair string, quantity, limitPrice decimal.Decimal, validity string) (LimitOrderRequest, error) {
	ticker, err := r.ToBroker(pair)
	if err != nil {
		return LimitOrderRequest{}, fmt.Errorf("resolve %q: %w", pair, err)
	}
	return LimitOrderRequest{
		Ticker:       ticker,
		Quantity:     quantity,
		LimitPrice:   limitPrice,
		TimeValidity: validity,
	}, nil
}

// NewStopOrderRequest builds a stop order body for a canonical pair.
func NewStopOrderRequest(r TickerResolver, pair string, quantity, stopPrice decimal.Decimal, validity string) (StopOrderRequest, error) {
	ticker, err := r.ToBroker(pair)
	if err != nil {
		return StopOrderRequest{}, fmt.Errorf("resolve %q: %w", pair, err)
	}
	return StopOrderRequest{
		Ticker:       ticker,
		Quantity:     quantity,
		StopPrice:    stopPrice,
		TimeValidity: validity,
	}, nil
}

// NewStopLimitOrderRequest builds a stop-limit order body for a
// canonical pair.
func NewStopLimitOrderRequest(r TickerResolver, pair string, quantity, limitPrice, stopPrice decimal.Decimal, validity string) (StopLimitOrderRequest, error) {
	ticker, err := r.ToBroker(pair)
	if err != nil {
		return StopLimitOrderRequest{}, fmt.Errorf("resolve %q: %w", pair, err)
	}
	return StopLimitOrderRequest{
		Ticker:       ticker,
		Quantity:     quantity,
		LimitPrice:   limitPrice,
		StopPrice:    stopPrice,
		TimeValidity: validity,
	}, nil
}
