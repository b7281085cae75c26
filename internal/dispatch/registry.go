package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/webhook"

	"github.com/gorilla/websocket"
)

// Registry tracks live push connections and broadcasts matching articles
// to them. Guarded by a single RWMutex (spec.md §5: "push registry guarded
// by lock").
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

// NewRegistry builds an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{connections: make(map[string]*Connection)}
}

// ErrAtCapacity is returned by Register when MaxConnections is already reached.
var ErrAtCapacity = fmt.Errorf("dispatch: at capacity (%d connections)", MaxConnections)

// Register admits a new connection under the given filter, enforcing
// MaxConnections. The caller is expected to close conn with CloseAtCapacity
// if this returns ErrAtCapacity.
func (r *Registry) Register(id string, conn *websocket.Conn, filter entity.Filter) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.connections) >= MaxConnections {
		return nil, ErrAtCapacity
	}
	c := newConnection(id, conn, filter)
	r.connections[id] = c
	return c, nil
}

// Unregister removes a connection and closes its send channel so its
// write pump exits.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	c, ok := r.connections[id]
	if ok {
		delete(r.connections, id)
	}
	r.mu.Unlock()
	if ok {
		close(c.send)
	}
}

// Count returns the number of currently registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Broadcast sends article to every connection whose filter matches it. A
// connection whose send buffer is full sheds its oldest queued frame
// rather than stalling the broadcast or losing the connection (spec.md
// §4.8: "non-blocking per-connection bounded send buffer").
func (r *Registry) Broadcast(article *entity.Article) {
	frame, err := json.Marshal(pushFrame{Type: "new_article", Data: webhook.NewArticlePayload(article)})
	if err != nil {
		slog.Error("dispatch: failed to marshal push frame", slog.Any("error", err))
		return
	}

	r.mu.RLock()
	targets := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		if c.Filter.Matches(article) {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(frame)
	}
}

type pushFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
