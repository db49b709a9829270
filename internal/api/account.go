package api

import (
	"context"
	"fmt"
)

// GetCash fetches the account's cash summary.
func (c *Client) GetCash(ctx context.Context) (*APICash, error) {
	var cash APICash
	if err := c.get(ctx, EndpointAccountCash, pathAccountCash, nil, &cash); err != nil {
		return nil, fmt.Errorf("get account cash: %w", err)
	}
	return &cash, nil
}

// GetAccountInfo fetches the account id and base currency. Cheap relative
// to its budget, so it doubles as the startup credential check.
func (c *Client) GetAccountInfo(ctx context.Context) (*APIAccountInfo, error) {
	var info APIAccountInfo
	if err := c.get(ctx, EndpointAccountInfo, pathAccountInfo, nil, &info); err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	return &info, nil
}
