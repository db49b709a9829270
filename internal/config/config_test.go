package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-bridge
api:
  environment: practice
  api_key: test-key
  auth_scheme: apikey
poller:
  orders: 2s
database:
  host: localhost
  port: 5432
  name: test_db
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-bridge" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-bridge")
	}
	if cfg.API.Environment != EnvironmentPractice {
		t.Errorf("API.Environment = %q, want practice", cfg.API.Environment)
	}
	if cfg.API.AuthScheme != "apikey" {
		t.Errorf("API.AuthScheme = %q, want apikey", cfg.API.AuthScheme)
	}
	if cfg.Poller.Orders != 2*time.Second {
		t.Errorf("Poller.Orders = %v, want 2s", cfg.Poller.Orders)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_T212_KEY", "secret123")

	yaml := `
instance:
  id: test-bridge
api:
  api_key: ${TEST_T212_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.APIKey != "secret123" {
		t.Errorf("API.APIKey = %q, want %q", cfg.API.APIKey, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-bridge
api:
  api_key: test-key
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.Environment != EnvironmentPractice {
		t.Errorf("API.Environment = %q, want default practice", cfg.API.Environment)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.API.AuthScheme != DefaultAuthScheme {
		t.Errorf("API.AuthScheme = %q, want default %q", cfg.API.AuthScheme, DefaultAuthScheme)
	}
	if cfg.Poller.Orders != DefaultOrdersInterval {
		t.Errorf("Poller.Orders = %v, want default %v", cfg.Poller.Orders, DefaultOrdersInterval)
	}
	if cfg.Poller.Instruments != DefaultInstrumentsInterval {
		t.Errorf("Poller.Instruments = %v, want default %v", cfg.Poller.Instruments, DefaultInstrumentsInterval)
	}
	if cfg.Symbols.DefaultQuote != DefaultQuoteCurrency {
		t.Errorf("Symbols.DefaultQuote = %q, want default %q", cfg.Symbols.DefaultQuote, DefaultQuoteCurrency)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database.MaxConns = %d, want default %d", cfg.Database.MaxConns, DefaultMaxConns)
	}
	if cfg.Writer.BatchSize != DefaultBatchSize {
		t.Errorf("Writer.BatchSize = %d, want default %d", cfg.Writer.BatchSize, DefaultBatchSize)
	}
	if cfg.Ops.Port != DefaultOpsPort {
		t.Errorf("Ops.Port = %d, want default %d", cfg.Ops.Port, DefaultOpsPort)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name string
		api  APIConfig
		want string
	}{
		{
			name: "practice",
			api:  APIConfig{Environment: EnvironmentPractice},
			want: DefaultPracticeURL,
		},
		{
			name: "live",
			api:  APIConfig{Environment: EnvironmentLive},
			want: DefaultLiveURL,
		},
		{
			name: "explicit override wins",
			api:  APIConfig{Environment: EnvironmentLive, BaseURL: "http://localhost:9999"},
			want: "http://localhost:9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.api.ResolveBaseURL(); got != tt.want {
				t.Errorf("ResolveBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// validConfig is a minimal configuration that passes validation after
// defaults; tests mutate one field at a time.
func validConfig() BridgeConfig {
	cfg := BridgeConfig{
		Instance: InstanceConfig{ID: "test"},
		API:      APIConfig{APIKey: "key"},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BridgeConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *BridgeConfig) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *BridgeConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "missing api key",
			mutate:  func(c *BridgeConfig) { c.API.APIKey = "" },
			wantErr: "api.api_key is required",
		},
		{
			name:    "bad environment",
			mutate:  func(c *BridgeConfig) { c.API.Environment = "paper" },
			wantErr: `api.environment must be practice or live, got "paper"`,
		},
		{
			name:    "bad auth scheme",
			mutate:  func(c *BridgeConfig) { c.API.AuthScheme = "basic" },
			wantErr: `api.auth_scheme must be bearer or apikey, got "basic"`,
		},
		{
			name: "rate limit override with zero limit",
			mutate: func(c *BridgeConfig) {
				c.API.RateLimits = map[string]RateLimitConfig{
					"orders_list": {Limit: 0, Interval: time.Second},
				}
			},
			wantErr: "api.rate_limits.orders_list.limit must be >= 1",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *BridgeConfig) { c.Poller.Cash = -time.Second },
			wantErr: "poller.cash must be > 0",
		},
		{
			name: "database without password",
			mutate: func(c *BridgeConfig) {
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 10}
			},
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *BridgeConfig) {
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "bad ops port",
			mutate:  func(c *BridgeConfig) { c.Ops.Port = 70000 },
			wantErr: "ops.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "bad log level",
			mutate:  func(c *BridgeConfig) { c.Logging.Level = "trace" },
			wantErr: `logging.level must be debug, info, warn or error, got "trace"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestValidateLiveGuard(t *testing.T) {
	t.Run("live without allow_live", func(t *testing.T) {
		cfg := validConfig()
		cfg.API.Environment = EnvironmentLive

		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "allow_live") {
			t.Errorf("Validate() error = %v, want allow_live complaint", err)
		}
	})

	t.Run("live without environment confirmation", func(t *testing.T) {
		// t.Setenv registers cleanup even when clearing.
		t.Setenv(LiveConfirmEnv, "")
		os.Unsetenv(LiveConfirmEnv)

		cfg := validConfig()
		cfg.API.Environment = EnvironmentLive
		cfg.API.AllowLive = true

		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), LiveConfirmEnv) {
			t.Errorf("Validate() error = %v, want %s complaint", err, LiveConfirmEnv)
		}
	})

	t.Run("live with both confirmations", func(t *testing.T) {
		t.Setenv(LiveConfirmEnv, "1")

		cfg := validConfig()
		cfg.API.Environment = EnvironmentLive
		cfg.API.AllowLive = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil with both confirmations", err)
		}
	})
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
