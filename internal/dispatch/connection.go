// Package dispatch broadcasts completed articles to live WebSocket push
// connections and enqueues webhook deliveries for matching subscriptions
// (spec.md §4.8). Ping/pong keepalive is grounded on the write/read-pump
// idiom the pack uses for long-lived gorilla/websocket connections (see
// the Bluesky Jetstream consumer in the retrieval pack), adapted from a
// client dialing out to a server accepting connections.
package dispatch

import (
	"log/slog"
	"sync/atomic"
	"time"

	"catchup-feed/internal/domain/entity"

	"github.com/gorilla/websocket"
)

// PingInterval is how often the server pings a live connection.
const PingInterval = 30 * time.Second

// PongTimeout is how long the server waits for a pong before closing the
// connection as dead.
const PongTimeout = 90 * time.Second

// SendBufferSize is the bounded per-connection outbound queue (spec.md §4.8).
const SendBufferSize = 32

// MaxConnections is the global cap on simultaneous live push connections.
const MaxConnections = 100

// Close codes used when the server terminates a connection (spec.md §6).
const (
	CloseAuthFailure = 1008
	CloseAtCapacity  = 1013
)

// Connection is one live push subscriber: a WebSocket plus the filter it
// registered with. send is unbuffered-safe for a single writer goroutine;
// Broadcast never blocks on a slow reader past SendBufferSize messages.
type Connection struct {
	ID     string
	Filter entity.Filter
	conn   *websocket.Conn
	send   chan []byte
	drops  atomic.Int64
}

func newConnection(id string, conn *websocket.Conn, filter entity.Filter) *Connection {
	return &Connection{
		ID:     id,
		Filter: filter,
		conn:   conn,
		send:   make(chan []byte, SendBufferSize),
	}
}

// enqueue pushes a frame to this connection's send buffer. When the buffer
// is full, it sheds the oldest queued frame and enqueues frame in its
// place rather than dropping the connection, incrementing Drops (spec.md
// §4.8: "drop the oldest undelivered item and increment a counter").
func (c *Connection) enqueue(frame []byte) {
	select {
	case c.send <- frame:
		return
	default:
	}

	select {
	case <-c.send:
		c.drops.Add(1)
	default:
	}

	select {
	case c.send <- frame:
	default:
		c.drops.Add(1)
	}
}

// Drops returns the number of frames shed from this connection's send
// buffer because a slow reader left it full.
func (c *Connection) Drops() int64 {
	return c.drops.Load()
}

// Serve runs the read and write pumps for this connection until the
// client disconnects, the context is canceled, or a pong timeout elapses.
// It blocks; callers run it in its own goroutine.
func (c *Connection) Serve() {
	done := make(chan struct{})
	go c.readPump(done)
	c.writePump(done)
}

func (c *Connection) readPump(done chan struct{}) {
	defer close(done)
	c.conn.SetReadDeadline(time.Now().Add(PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PongTimeout))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Connection) writePump(done chan struct{}) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("push connection write failed", slog.String("connection_id", c.ID), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
