package api

import (
	"context"
	"fmt"
)

// GetPortfolio fetches all open positions.
func (c *Client) GetPortfolio(ctx context.Context) ([]APIPosition, error) {
	var positions []APIPosition
	if err := c.get(ctx, EndpointPortfolio, pathPortfolio, nil, &positions); err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return positions, nil
}

// GetPosition fetches a single open position by broker ticker. Returns a
// NotFound error when nothing is held.
func (c *Client) GetPosition(ctx context.Context, ticker string) (*APIPosition, error) {
	var position APIPosition
	path := pathPortfolio + "/" + ticker
	if err := c.get(ctx, EndpointPortfolio, path, nil, &position); err != nil {
		return nil, fmt.Errorf("get position %s: %w", ticker, err)
	}
	return &position, nil
}
