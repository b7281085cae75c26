// Package process exposes the operator-facing manual enrichment trigger.
package process

import (
	"context"
	"net/http"

	"catchup-feed/internal/handler/http/respond"
)

// Triggerer re-enqueues pending/processing articles immediately. Satisfied
// by *enrichment.Engine.
type Triggerer interface {
	TriggerAll(ctx context.Context) (int, error)
}

// Handler implements POST /process.
type Handler struct {
	Engine Triggerer
}

// ServeHTTP re-enqueues every article not yet fully enriched, without
// waiting for the backstop sweep's staleness window.
// @Summary      Trigger enrichment
// @Description  Re-enqueues all pending or processing articles for enrichment immediately
// @Tags         enrichment
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {object} map[string]int
// @Failure      500 {string} string "internal server error"
// @Router       /process [post]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.TriggerAll(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"enqueued": n})
}

// Register wires the manual enrichment trigger route.
func Register(mux *http.ServeMux, engine Triggerer) {
	mux.Handle("POST /process", Handler{Engine: engine})
}
