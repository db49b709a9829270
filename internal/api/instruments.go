package api

import (
	"context"
	"fmt"
)

// GetInstruments fetches the broker's full tradeable universe. The
// response runs to thousands of records and the endpoint allows one call
// per thirty seconds, so callers cache it.
func (c *Client) GetInstruments(ctx context.Context) ([]APIInstrument, error) {
	var instruments []APIInstrument
	if err := c.get(ctx, EndpointMetadata, pathInstruments, nil, &instruments); err != nil {
		return nil, fmt.Errorf("get instruments: %w", err)
	}
	return instruments, nil
}
