package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// do performs one logical request against the named endpoint budget,
// retrying transient failures (429, 5xx, timeouts) with linear backoff:
// delay = backoff × attempt. Every attempt draws a fresh token from the
// budget, so retries are metered exactly like first attempts. Pending
// retries are abandoned when ctx is cancelled.
func (c *Client) do(ctx context.Context, endpointID, method, path string, query url.Values, payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.retryBackoff
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"delay", delay,
				"endpoint", endpointID,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		waitStart := time.Now()
		if err := c.limiter.Acquire(ctx, endpointID); err != nil {
			return nil, fmt.Errorf("acquire token for %s: %w", endpointID, err)
		}
		c.metrics.ObserveTokenWait(endpointID, time.Since(waitStart))

		body, err := c.doRequest(ctx, endpointID, method, path, query, reqBody)
		if err == nil {
			return body, nil
		}

		lastErr = err

		apiErr, ok := AsAPIError(err)
		if !ok || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP attempt. Auth headers carry the API
// key in the configured scheme plus the scope the resolver assigns to
// this method/path pair.
func (c *Client) doRequest(ctx context.Context, endpointID, method, path string, query url.Values, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		switch c.scheme {
		case AuthSchemeAPIKey:
			req.Header.Set("Authorization", "ApiKey "+c.apiKey)
		default:
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
	}
	if scope, ok := ResolveScope(method, path); ok {
		req.Header.Set("X-Scope", string(scope))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.CountHTTPAttempt(endpointID, 0)
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.CountHTTPAttempt(endpointID, 0)
		return nil, newTransportError(err)
	}

	c.metrics.CountHTTPAttempt(endpointID, resp.StatusCode)

	if resp.StatusCode >= 400 {
		return nil, newStatusError(resp.StatusCode, respBody)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	return respBody, nil
}

// get performs a rate-limited GET and decodes the response into result.
func (c *Client) get(ctx context.Context, endpointID, path string, query url.Values, result any) error {
	body, err := c.do(ctx, endpointID, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// post performs a rate-limited POST with a JSON payload.
func (c *Client) post(ctx context.Context, endpointID, path string, payload, result any) error {
	body, err := c.do(ctx, endpointID, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// del performs a rate-limited DELETE.
func (c *Client) del(ctx context.Context, endpointID, path string) error {
	_, err := c.do(ctx, endpointID, http.MethodDelete, path, nil, nil)
	return err
}

// decode unmarshals a response body. An empty body (204 or bodyless 200)
// leaves result at its zero value: the broker uses it for "nothing here",
// which is not an error.
func decode(body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &APIError{
			Kind:    KindParse,
			Message: fmt.Sprintf("unmarshal response: %v", err),
			Body:    body,
			Err:     err,
		}
	}
	return nil
}
