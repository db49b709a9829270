package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/t212-bridge/internal/metrics"
	"github.com/rickgao/t212-bridge/internal/ratelimit"
)

// AuthScheme selects how the API key is presented in the Authorization
// header. Broker deployments disagree on the expected scheme, so it is
// configuration rather than a constant.
type AuthScheme string

const (
	// AuthSchemeBearer sends "Authorization: Bearer <key>".
	AuthSchemeBearer AuthScheme = "bearer"
	// AuthSchemeAPIKey sends "Authorization: ApiKey <key>".
	AuthSchemeAPIKey AuthScheme = "apikey"
)

// Valid reports whether the scheme is one of the known variants.
func (s AuthScheme) Valid() bool {
	return s == AuthSchemeBearer || s == AuthSchemeAPIKey
}

// Client provides rate-limited access to the Trading212 equity REST API.
// Every request draws a token from the endpoint's budget before each
// attempt, so the limiter sees retries the same way the broker does.
type Client struct {
	baseURL    string
	apiKey     string
	scheme     AuthScheme
	limiter    *ratelimit.Limiter
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. The limiter is shared state:
// all loops and callers using this client draw from the same budgets.
func NewClient(baseURL, apiKey string, limiter *ratelimit.Limiter, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		scheme:  AuthSchemeBearer,
		limiter: limiter,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration: up to max retries after the
// first attempt, sleeping backoff×attempt between attempts.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithAuthScheme sets the Authorization header scheme.
func WithAuthScheme(s AuthScheme) ClientOption {
	return func(c *Client) {
		c.scheme = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics attaches request instrumentation. A nil Metrics is valid
// and records nothing.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}
