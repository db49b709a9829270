package config

import "time"

// BridgeConfig is the root configuration for a bridge instance.
type BridgeConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Poller   PollerConfig   `yaml:"poller"`
	Symbols  SymbolsConfig  `yaml:"symbols"`
	Database DBConfig       `yaml:"database"`
	Writer   WriterConfig   `yaml:"writer"`
	Stream   StreamConfig   `yaml:"stream"`
	Ops      OpsConfig      `yaml:"ops"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this bridge.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// Environment selects which Trading212 account the bridge talks to.
type Environment string

const (
	EnvironmentPractice Environment = "practice"
	EnvironmentLive     Environment = "live"
)

// APIConfig holds Trading212 API settings.
type APIConfig struct {
	Environment Environment `yaml:"environment"` // practice or live
	BaseURL     string      `yaml:"base_url"`    // overrides the environment URL when set
	APIKey      string      `yaml:"api_key"`     // usually ${T212_API_KEY}
	AuthScheme  string      `yaml:"auth_scheme"` // bearer or apikey

	// AllowLive must be set, together with T212_BRIDGE_ALLOW_LIVE=1 in
	// the process environment, before a live account is accepted.
	AllowLive bool `yaml:"allow_live"`

	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// RateLimits overrides the built-in per-endpoint budgets by endpoint
	// id. Ids not in the built-in table are rejected at startup.
	RateLimits map[string]RateLimitConfig `yaml:"rate_limits"`
}

// RateLimitConfig overrides one endpoint budget.
type RateLimitConfig struct {
	Limit    int           `yaml:"limit"`
	Interval time.Duration `yaml:"interval"`
}

// ResolveBaseURL returns the REST base URL for the configured
// environment, or the explicit override when one is set.
func (a APIConfig) ResolveBaseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	if a.Environment == EnvironmentLive {
		return DefaultLiveURL
	}
	return DefaultPracticeURL
}

// PollerConfig holds per-resource poll cadences.
type PollerConfig struct {
	Orders      time.Duration `yaml:"orders"`
	Cash        time.Duration `yaml:"cash"`
	Positions   time.Duration `yaml:"positions"`
	Quotes      time.Duration `yaml:"quotes"`
	Instruments time.Duration `yaml:"instruments"`
}

// SymbolsConfig holds symbol translation settings.
type SymbolsConfig struct {
	OverridesPath string `yaml:"overrides_path"` // optional mapping file
	DefaultQuote  string `yaml:"default_quote"`
}

// DBConfig holds the optional Postgres connection for the change event
// recorder. Leaving host empty disables recording entirely.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database was configured at all.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// StreamConfig holds WebSocket hub settings.
type StreamConfig struct {
	ClientBuffer int           `yaml:"client_buffer"` // queued changes per client before it is dropped
	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OpsConfig holds the operational HTTP server settings (health, metrics
// and the stream endpoint share one port).
type OpsConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`  // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}
