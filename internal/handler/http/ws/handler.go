// Package ws exposes the live push endpoint that admits WebSocket
// connections into internal/dispatch.Registry.
package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"catchup-feed/internal/dispatch"
	"catchup-feed/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades GET /ws/articles requests and registers the resulting
// connection with a dispatch.Registry, filtered by query parameters.
type Handler struct {
	Registry *dispatch.Registry
}

// ServeHTTP upgrades the connection and serves it until the client
// disconnects or the registry drops it as too slow.
// @Summary      Live article push
// @Description  WebSocket upgrade. Filter via query params: source_id, transport_mode, topic, region, language, urgency_min (repeatable, comma-separated, or combined)
// @Tags         websocket
// @Security     APIKeyAuth
// @Router       /ws/articles [get]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws: upgrade failed", slog.Any("error", err))
		return
	}

	id := uuid.NewString()
	c, err := h.Registry.Register(id, conn, filter)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(dispatch.CloseAtCapacity, "at capacity"), time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}

	defer h.Registry.Unregister(id)
	c.Serve()
}

func parseFilter(r *http.Request) entity.Filter {
	q := r.URL.Query()

	f := entity.Filter{
		SourceIDs:  splitCSV(q.Get("source_id")),
		Topics:     splitCSV(q.Get("topic")),
		Regions:    splitCSV(q.Get("region")),
		Languages:  splitCSV(q.Get("language")),
		UrgencyMin: entity.Urgency(q.Get("urgency_min")),
	}
	for _, m := range splitCSV(q.Get("transport_mode")) {
		f.TransportModes = append(f.TransportModes, entity.TransportMode(m))
	}
	return f
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
