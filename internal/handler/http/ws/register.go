package ws

import (
	"net/http"

	"catchup-feed/internal/dispatch"
)

// Register wires the live push route.
func Register(mux *http.ServeMux, registry *dispatch.Registry) {
	mux.Handle("GET /ws/articles", Handler{Registry: registry})
}
