package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetHistoryOrders fetches one page of historical orders.
func (c *Client) GetHistoryOrders(ctx context.Context, opts HistoryOrdersOptions) (*HistoryOrdersResponse, error) {
	query := url.Values{}
	if opts.Cursor > 0 {
		query.Set("cursor", strconv.FormatInt(opts.Cursor, 10))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Ticker != "" {
		query.Set("ticker", opts.Ticker)
	}

	var resp HistoryOrdersResponse
	if err := c.get(ctx, EndpointHistoryOrders, pathHistoryOrders, query, &resp); err != nil {
		return nil, fmt.Errorf("get history orders: %w", err)
	}
	return &resp, nil
}

// GetAllHistoryOrders walks nextPagePath links until the history is
// exhausted. The history budget (6/min) makes this slow on big accounts;
// pass a deadline on ctx.
func (c *Client) GetAllHistoryOrders(ctx context.Context, opts HistoryOrdersOptions) ([]APIOrder, error) {
	first, err := c.GetHistoryOrders(ctx, opts)
	if err != nil {
		return nil, err
	}

	all := first.Items
	next := first.NextPagePath

	for next != "" {
		u, err := url.Parse(next)
		if err != nil {
			return nil, fmt.Errorf("parse history page path %q: %w", next, err)
		}

		var page HistoryOrdersResponse
		if err := c.get(ctx, EndpointHistoryOrders, u.Path, u.Query(), &page); err != nil {
			return nil, fmt.Errorf("get history page: %w", err)
		}

		all = append(all, page.Items...)
		next = page.NextPagePath
	}

	return all, nil
}
