package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPracticeURL = "https://api-practice.trading212.com"
	DefaultLiveURL     = "https://live.trading212.com"

	DefaultAuthScheme   = "bearer"
	DefaultAPITimeout   = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 1 * time.Second

	DefaultOrdersInterval      = 1 * time.Second
	DefaultCashInterval        = 5 * time.Second
	DefaultPositionsInterval   = 5 * time.Second
	DefaultQuotesInterval      = 10 * time.Second
	DefaultInstrumentsInterval = 5 * time.Minute

	DefaultQuoteCurrency = "USD"

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultBatchSize     = 500
	DefaultFlushInterval = 1 * time.Second
	DefaultBufferSize    = 10000

	DefaultClientBuffer = 256
	DefaultPingInterval = 15 * time.Second
	DefaultWriteTimeout = 5 * time.Second

	DefaultOpsPort     = 8080
	DefaultMetricsPath = "/metrics"

	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 7
)

func (c *BridgeConfig) applyDefaults() {
	// API defaults
	if c.API.Environment == "" {
		c.API.Environment = EnvironmentPractice
	}
	if c.API.AuthScheme == "" {
		c.API.AuthScheme = DefaultAuthScheme
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Poller defaults
	if c.Poller.Orders == 0 {
		c.Poller.Orders = DefaultOrdersInterval
	}
	if c.Poller.Cash == 0 {
		c.Poller.Cash = DefaultCashInterval
	}
	if c.Poller.Positions == 0 {
		c.Poller.Positions = DefaultPositionsInterval
	}
	if c.Poller.Quotes == 0 {
		c.Poller.Quotes = DefaultQuotesInterval
	}
	if c.Poller.Instruments == 0 {
		c.Poller.Instruments = DefaultInstrumentsInterval
	}

	// Symbols defaults
	if c.Symbols.DefaultQuote == "" {
		c.Symbols.DefaultQuote = DefaultQuoteCurrency
	}

	// Database defaults (only meaningful when a database is configured)
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDBPort
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = DefaultDBSSLMode
		}
		if c.Database.MaxConns == 0 {
			c.Database.MaxConns = DefaultMaxConns
		}
		if c.Database.MinConns == 0 {
			c.Database.MinConns = DefaultMinConns
		}
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.BufferSize == 0 {
		c.Writer.BufferSize = DefaultBufferSize
	}

	// Stream defaults
	if c.Stream.ClientBuffer == 0 {
		c.Stream.ClientBuffer = DefaultClientBuffer
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}

	// Ops defaults
	if c.Ops.Port == 0 {
		c.Ops.Port = DefaultOpsPort
	}
	if c.Ops.MetricsPath == "" {
		c.Ops.MetricsPath = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
