// streamprobe connects to a running bridge's stream endpoint and prints
// every change event to the console.
//
// Usage: go run ./cmd/streamprobe --url ws://localhost:8080/v1/stream --resources orders,cash
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/t212-bridge/internal/router"
)

func main() {
	streamURL := flag.String("url", "ws://localhost:8080/v1/stream", "bridge stream endpoint")
	resources := flag.String("resources", "", "comma-separated resource filter (empty = all)")
	verbose := flag.Bool("verbose", false, "print full change JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	target, err := buildURL(*streamURL, *resources)
	if err != nil {
		logger.Error("bad stream url", "error", err)
		os.Exit(1)
	}

	logger.Info("connecting", "url", target)
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("connected - press Ctrl+C to stop")

	var total, created, updated, removed atomic.Int64

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("stats",
					"total", total.Load(),
					"created", created.Load(),
					"updated", updated.Load(),
					"removed", removed.Load(),
				)
			}
		}
	}()

	// Close the connection when the context ends so ReadMessage unblocks
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Info("shutdown complete",
					"total", total.Load(),
					"created", created.Load(),
					"updated", updated.Load(),
					"removed", removed.Load(),
				)
				return
			default:
				logger.Error("read failed", "error", err)
				os.Exit(1)
			}
		}

		var ch router.Change
		if err := json.Unmarshal(data, &ch); err != nil {
			logger.Warn("unparseable frame", "error", err)
			continue
		}

		total.Add(1)
		switch ch.Kind {
		case "created":
			created.Add(1)
		case "updated":
			updated.Add(1)
		case "removed":
			removed.Add(1)
		}

		if *verbose {
			pretty, _ := json.MarshalIndent(ch, "", "  ")
			fmt.Printf("[CHANGE] %s\n", pretty)
		} else {
			line := fmt.Sprintf("[%s %s] key=%s",
				strings.ToUpper(string(ch.Resource)), ch.Kind, ch.Key)
			if ch.Pair != "" {
				line += " pair=" + ch.Pair
			}
			fmt.Printf("%s fetched=%s\n", line, ch.FetchedAt.Format(time.RFC3339))
		}
	}
}

// buildURL attaches the resources filter to the endpoint URL.
func buildURL(raw, resources string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if resources != "" {
		q := u.Query()
		q.Set("resources", resources)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
