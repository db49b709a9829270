package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/t212-bridge/internal/metrics"
	"github.com/rickgao/t212-bridge/internal/model"
	"github.com/rickgao/t212-bridge/internal/router"
)

// Config contains configuration for the stream hub.
type Config struct {
	// ClientBuffer is each client's outbound queue depth. A client
	// whose queue fills is disconnected.
	ClientBuffer int

	// PingInterval is how often the hub pings each client.
	PingInterval time.Duration

	// WriteTimeout bounds each write to a client.
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ClientBuffer: 256,
		PingInterval: 15 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Stats holds hub counters.
type Stats struct {
	Clients   int
	Broadcast int64
	Dropped   int64
}

// Hub broadcasts change events to WebSocket subscribers in emission
// order. It consumes a router subscription; each connected client gets
// its own outbound queue so one stalled connection cannot hold back the
// rest.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	// Input from the router
	input *router.Subscription

	// Connected clients
	mu      sync.Mutex
	clients map[*client]bool

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	broadcast atomic.Int64
	dropped   atomic.Int64
}

// NewHub creates a hub consuming the given subscription. The metrics
// handle may be nil.
func NewHub(cfg Config, input *router.Subscription, logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		input:   input,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start begins consuming changes and broadcasting to clients.
func (h *Hub) Start(ctx context.Context) error {
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(1)
	go h.broadcastLoop()

	h.logger.Info("stream hub started",
		"client_buffer", h.cfg.ClientBuffer,
		"ping_interval", h.cfg.PingInterval,
	)
	return nil
}

// Stop disconnects every client and shuts the hub down.
func (h *Hub) Stop(ctx context.Context) error {
	h.logger.Info("stopping stream hub")

	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*client]bool)
	h.mu.Unlock()
	h.metrics.SetStreamClients(0)

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("stream hub stopped")
	case <-ctx.Done():
		h.logger.Warn("stream hub stop timed out")
	}
	return nil
}

// Stats returns current hub counters.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	n := len(h.clients)
	h.mu.Unlock()
	return Stats{
		Clients:   n,
		Broadcast: h.broadcast.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection. An
// optional resources query parameter (comma-separated) narrows what the
// client receives; unknown names reject the request before upgrading.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wanted, err := parseResources(r.URL.Query().Get("resources"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := newClient(h, conn, wanted)

	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetStreamClients(n)

	h.logger.Info("stream client connected", "remote", r.RemoteAddr, "clients", n)

	go c.writePump()
	go c.readPump()
}

// broadcastLoop reads changes from the subscription in order and fans
// them out to every interested client.
func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		default:
			ch, ok := h.input.TryReceive()
			if !ok {
				select {
				case <-h.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			h.handleChange(ch)
		}
	}
}

// handleChange encodes one change and enqueues it for every client
// whose filter matches. Clients with a full queue are dropped.
func (h *Hub) handleChange(ch router.Change) {
	data, err := json.Marshal(ch)
	if err != nil {
		h.logger.Error("encode change", "error", err, "resource", ch.Resource, "key", ch.Key)
		return
	}
	h.broadcast.Add(1)

	var slow []*client
	h.mu.Lock()
	for c := range h.clients {
		if !c.wants(ch.Resource) {
			continue
		}
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow stream client", "remote", c.remote())
		h.dropped.Add(1)
		h.remove(c)
	}
}

// remove unregisters c and closes its connection.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if present {
		h.metrics.SetStreamClients(n)
		h.logger.Info("stream client disconnected", "remote", c.remote(), "clients", n)
	}
	c.close()
}

// parseResources parses the comma-separated filter. Empty means all.
func parseResources(raw string) (map[model.Resource]bool, error) {
	if raw == "" {
		return nil, nil
	}
	wanted := make(map[model.Resource]bool)
	for _, part := range strings.Split(raw, ",") {
		res := model.Resource(strings.TrimSpace(part))
		if !res.Valid() {
			return nil, &UnknownResourceError{Name: string(res)}
		}
		wanted[res] = true
	}
	return wanted, nil
}

// UnknownResourceError reports a resources filter entry that names no
// known resource.
type UnknownResourceError struct {
	Name string
}

func (e *UnknownResourceError) Error() string {
	return "unknown resource " + strconv.Quote(e.Name)
}
