package config

import (
	"errors"
	"fmt"
	"os"
)

// LiveConfirmEnv is the environment variable that must be "1" before a
// live-account config validates. Both the yaml flag and the variable are
// required so a copied config cannot point an unattended deploy at real
// money.
const LiveConfirmEnv = "T212_BRIDGE_ALLOW_LIVE"

// Validate checks that all required fields are set and values are valid.
func (c *BridgeConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.API.Environment {
	case EnvironmentPractice:
	case EnvironmentLive:
		if !c.API.AllowLive {
			return errors.New("api.environment is live but api.allow_live is not set")
		}
		if os.Getenv(LiveConfirmEnv) != "1" {
			return fmt.Errorf("api.environment is live but %s=1 is not set in the environment", LiveConfirmEnv)
		}
	default:
		return fmt.Errorf("api.environment must be practice or live, got %q", c.API.Environment)
	}

	if c.API.APIKey == "" {
		return errors.New("api.api_key is required")
	}
	if c.API.AuthScheme != "bearer" && c.API.AuthScheme != "apikey" {
		return fmt.Errorf("api.auth_scheme must be bearer or apikey, got %q", c.API.AuthScheme)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must be >= 0, got %d", c.API.MaxRetries)
	}

	for id, rl := range c.API.RateLimits {
		if rl.Limit < 1 {
			return fmt.Errorf("api.rate_limits.%s.limit must be >= 1", id)
		}
		if rl.Interval <= 0 {
			return fmt.Errorf("api.rate_limits.%s.interval must be > 0", id)
		}
	}

	if c.Poller.Orders <= 0 {
		return errors.New("poller.orders must be > 0")
	}
	if c.Poller.Cash <= 0 {
		return errors.New("poller.cash must be > 0")
	}
	if c.Poller.Positions <= 0 {
		return errors.New("poller.positions must be > 0")
	}
	if c.Poller.Quotes <= 0 {
		return errors.New("poller.quotes must be > 0")
	}
	if c.Poller.Instruments <= 0 {
		return errors.New("poller.instruments must be > 0")
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
		if c.Writer.BatchSize < 1 {
			return errors.New("writer.batch_size must be >= 1")
		}
		if c.Writer.BufferSize < 1 {
			return errors.New("writer.buffer_size must be >= 1")
		}
	}

	if c.Stream.ClientBuffer < 1 {
		return errors.New("stream.client_buffer must be >= 1")
	}

	if c.Ops.Port < 1 || c.Ops.Port > 65535 {
		return fmt.Errorf("ops.port must be between 1 and 65535, got %d", c.Ops.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
