package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/t212-bridge/internal/model"
)

// client is one connected stream subscriber.
type client struct {
	hub  *Hub
	conn *websocket.Conn

	// Resources the client asked for; nil means all.
	resources map[model.Resource]bool

	outbound chan []byte
	done     chan struct{}
	once     sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, resources map[model.Resource]bool) *client {
	return &client{
		hub:       h,
		conn:      conn,
		resources: resources,
		outbound:  make(chan []byte, h.cfg.ClientBuffer),
		done:      make(chan struct{}),
	}
}

// wants reports whether the client's filter matches the resource.
func (c *client) wants(res model.Resource) bool {
	return c.resources == nil || c.resources[res]
}

// enqueue adds data to the outbound queue without blocking, reporting
// false when the queue is full.
func (c *client) enqueue(data []byte) bool {
	select {
	case c.outbound <- data:
		return true
	default:
		return false
	}
}

// close signals the pumps to stop and closes the connection. Safe to
// call more than once.
func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	})
}

func (c *client) remote() string {
	return c.conn.RemoteAddr().String()
}

// writePump drains the outbound queue to the connection and pings on
// an interval. One writer per connection, so no write mutex is needed.
func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.remove(c)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(c.hub.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.hub.remove(c)
				return
			}
		}
	}
}

// readPump discards inbound frames and keeps the read deadline fresh.
// The stream is one-way; reading only serves pong handling and close
// detection.
func (c *client) readPump() {
	wait := 2 * c.hub.cfg.PingInterval
	c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case <-c.done:
			default:
				c.hub.remove(c)
			}
			return
		}
	}
}
