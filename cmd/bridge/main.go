package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rickgao/t212-bridge/internal/api"
	"github.com/rickgao/t212-bridge/internal/config"
	"github.com/rickgao/t212-bridge/internal/database"
	"github.com/rickgao/t212-bridge/internal/metrics"
	"github.com/rickgao/t212-bridge/internal/model"
	"github.com/rickgao/t212-bridge/internal/poller"
	"github.com/rickgao/t212-bridge/internal/ratelimit"
	"github.com/rickgao/t212-bridge/internal/router"
	"github.com/rickgao/t212-bridge/internal/stream"
	"github.com/rickgao/t212-bridge/internal/symbols"
	"github.com/rickgao/t212-bridge/internal/tracker"
	"github.com/rickgao/t212-bridge/internal/version"
	"github.com/rickgao/t212-bridge/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/bridge.yaml", "path to config file")
	flag.Parse()

	// .env is optional; deployments usually set variables directly.
	godotenv.Load()

	// Bootstrap logger until config says otherwise
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting bridge",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
		"environment", cfg.API.Environment,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	m := metrics.New()

	// Rate limiter with config overrides applied
	budgets, err := api.MergeBudgets(budgetOverrides(cfg.API.RateLimits))
	if err != nil {
		logger.Error("failed to build rate limit budgets", "error", err)
		os.Exit(1)
	}
	limiter, err := ratelimit.NewLimiter(budgets)
	if err != nil {
		logger.Error("failed to build rate limiter", "error", err)
		os.Exit(1)
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.API.ResolveBaseURL(),
		cfg.API.APIKey,
		limiter,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithAuthScheme(api.AuthScheme(cfg.API.AuthScheme)),
		api.WithMetrics(m),
	)

	// Credential check; also yields the account currency for the cash loop
	logger.Info("checking account access")
	info, err := apiClient.GetAccountInfo(ctx)
	if err != nil {
		logger.Error("failed to fetch account info", "error", err)
		os.Exit(1)
	}
	logger.Info("account verified",
		"account_id", info.ID,
		"currency", info.CurrencyCode,
	)

	// Symbol translator: explicit overrides win, instrument metadata
	// fills in the rest. A failed warmup falls back to derived pairs.
	overrides, err := symbols.LoadOverridesFile(cfg.Symbols.OverridesPath)
	if err != nil {
		logger.Error("failed to load symbol overrides", "error", err, "path", cfg.Symbols.OverridesPath)
		os.Exit(1)
	}
	translator := symbols.New(
		symbols.WithOverrides(overrides),
		symbols.WithInstruments(fetchInstruments(ctx, apiClient, logger)),
		symbols.WithDefaultQuote(cfg.Symbols.DefaultQuote),
		symbols.WithLogger(logger),
	)
	logger.Info("symbol translator ready", "known_tickers", translator.Known())

	track := tracker.New()
	rt := router.New(logger)

	// Optional change event recorder
	var pool *pgxpool.Pool
	var changeWriter *writer.ChangeWriter
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("database connected")

		changeWriter = writer.NewChangeWriter(
			writer.Config{
				BatchSize:     cfg.Writer.BatchSize,
				FlushInterval: cfg.Writer.FlushInterval,
			},
			rt.Subscribe("writer", cfg.Writer.BufferSize),
			pool,
			logger,
			m,
		)
		if err := changeWriter.Start(ctx); err != nil {
			logger.Error("failed to start change writer", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("no database configured, change events will not be recorded")
	}

	// Stream hub
	hub := stream.NewHub(
		stream.Config{
			ClientBuffer: cfg.Stream.ClientBuffer,
			PingInterval: cfg.Stream.PingInterval,
			WriteTimeout: cfg.Stream.WriteTimeout,
		},
		rt.Subscribe("stream", cfg.Stream.ClientBuffer),
		logger,
		m,
	)
	if err := hub.Start(ctx); err != nil {
		logger.Error("failed to start stream hub", "error", err)
		os.Exit(1)
	}

	// Poll loops
	intervals := pollIntervals(cfg.Poller)
	sources := []poller.Source{
		poller.NewOrdersSource(apiClient, translator, track, logger),
		poller.NewCashSource(apiClient, info.CurrencyCode, track, logger),
		poller.NewPositionsSource(apiClient, translator, track, logger),
		poller.NewQuotesSource(apiClient, translator, track, logger),
		poller.NewInstrumentsSource(apiClient, translator, track, logger),
	}
	p := poller.New(poller.Config{Intervals: intervals}, rt, sources, logger, m)
	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	// Ops server: health, metrics and the stream share one port
	mux := http.NewServeMux()
	mux.Handle(cfg.Ops.MetricsPath, m.Handler())
	mux.Handle("/v1/stream", hub)
	mux.Handle("/health", healthHandler(healthDeps{
		intervals:  intervals,
		startedAt:  time.Now(),
		tracker:    track,
		pool:       pool,
		router:     rt,
		hub:        hub,
		translator: translator,
	}))

	opsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Ops.Port),
		Handler: mux,
	}
	go func() {
		logger.Info("starting ops server", "port", cfg.Ops.Port)
		if err := opsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
		}
	}()

	// Keep the staleness gauges fresh between polls
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				for _, res := range model.Resources() {
					if age, ok := track.Staleness(res, now); ok {
						m.SetStateAge(string(res), age)
					}
				}
			}
		}
	}()

	logger.Info("bridge running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Ops.Port),
		"stream_url", fmt.Sprintf("ws://localhost:%d/v1/stream", cfg.Ops.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Producers first, then the fan-out, then the sinks
	p.Stop(shutdownCtx)
	rt.Close()
	if changeWriter != nil {
		changeWriter.Stop(shutdownCtx)
	}
	hub.Stop(shutdownCtx)
	opsServer.Shutdown(shutdownCtx)

	logger.Info("bridge stopped")
}

// newLogger builds the configured logger. With a file set, output goes
// to both stdout and a size-rotated log file.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// budgetOverrides converts config rate limit entries into budgets.
func budgetOverrides(overrides map[string]config.RateLimitConfig) map[string]ratelimit.Budget {
	if len(overrides) == 0 {
		return nil
	}
	out := make(map[string]ratelimit.Budget, len(overrides))
	for id, rl := range overrides {
		out[id] = ratelimit.Budget{ID: id, Limit: rl.Limit, Interval: rl.Interval}
	}
	return out
}

// pollIntervals maps config cadences onto resources.
func pollIntervals(cfg config.PollerConfig) map[model.Resource]time.Duration {
	return map[model.Resource]time.Duration{
		model.ResourceOrders:      cfg.Orders,
		model.ResourceCash:        cfg.Cash,
		model.ResourcePositions:   cfg.Positions,
		model.ResourceQuotes:      cfg.Quotes,
		model.ResourceInstruments: cfg.Instruments,
	}
}

// fetchInstruments loads instrument metadata for translator warmup.
// Failure is not fatal; the translator falls back to derived pairs and
// the instruments poll loop repairs the gap later.
func fetchInstruments(ctx context.Context, client *api.Client, logger *slog.Logger) []model.Instrument {
	apiInstruments, err := client.GetInstruments(ctx)
	if err != nil {
		logger.Warn("instrument warmup failed, continuing with derived pairs", "error", err)
		return nil
	}

	instruments := make([]model.Instrument, 0, len(apiInstruments))
	for i := range apiInstruments {
		inst, err := apiInstruments[i].ToModel()
		if err != nil {
			logger.Warn("skipping instrument", "error", err)
			continue
		}
		instruments = append(instruments, inst)
	}
	logger.Info("instrument metadata loaded", "count", len(instruments))
	return instruments
}

// healthDeps bundles what the health endpoint inspects.
type healthDeps struct {
	intervals  map[model.Resource]time.Duration
	startedAt  time.Time
	tracker    *tracker.Tracker
	pool       *pgxpool.Pool
	router     *router.Router
	hub        *stream.Hub
	translator *symbols.Translator
}

// healthHandler reports component status as JSON. A resource counts as
// stale once its snapshot age exceeds three poll intervals; failed
// fetches keep the last good snapshot, so growing age means the broker
// has been unreachable for a while.
func healthHandler(deps healthDeps) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database when one is configured
		if deps.pool != nil {
			if err := deps.pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		// Check per-resource snapshot age
		now := time.Now()
		state := make(map[string]interface{}, len(deps.intervals))
		for res, interval := range deps.intervals {
			age, ok := deps.tracker.Staleness(res, now)
			if !ok {
				// Never synced; measure from process start
				age = now.Sub(deps.startedAt)
			}
			entry := map[string]interface{}{
				"age_seconds": age.Seconds(),
				"count":       deps.tracker.Count(res),
			}
			if age > 3*interval {
				entry["status"] = "stale"
				if health.Status == "healthy" {
					health.Status = "degraded"
				}
			}
			state[string(res)] = entry
		}
		health.Components["state"] = state

		routerStats := deps.router.Stats()
		health.Components["router"] = map[string]int64{
			"published": routerStats.Published,
			"dropped":   routerStats.Dropped,
		}
		health.Components["stream"] = map[string]int{
			"clients": deps.hub.ClientCount(),
		}
		health.Components["symbols"] = map[string]int{
			"known_tickers": deps.translator.Known(),
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})
}
