package discovery

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	discUC "catchup-feed/internal/usecase/discovery"

	"catchup-feed/internal/discovery"
)

type StartHandler struct{ Svc *discUC.Service }

// ServeHTTP starts the automatic scan/validate schedule. Idempotent.
// @Summary      Start discovery loop
// @Tags         discovery
// @Security     APIKeyAuth
// @Success      204 "No Content"
// @Router       /discovery/start [post]
func (h StartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Svc.Start(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type StopHandler struct{ Svc *discUC.Service }

// ServeHTTP stops the automatic schedule. Idempotent.
// @Summary      Stop discovery loop
// @Tags         discovery
// @Security     APIKeyAuth
// @Success      204 "No Content"
// @Router       /discovery/stop [post]
func (h StopHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Svc.Stop()
	w.WriteHeader(http.StatusNoContent)
}

type StatusHandler struct{ Svc *discUC.Service }

// ServeHTTP reports whether the loop is running and each phase's next
// fire time.
// @Summary      Discovery loop status
// @Tags         discovery
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {object} StatusDTO
// @Router       /discovery/status [get]
func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, toStatusDTO(h.Svc.Status()))
}

type ScanHandler struct{ Svc *discUC.Service }

// ServeHTTP triggers one scan cycle immediately.
// @Summary      Trigger discovery scan
// @Tags         discovery
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {object} map[string]int
// @Router       /discovery/scan [post]
func (h ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	created, err := h.Svc.Scan(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"new_candidates": created})
}

type ValidateHandler struct{ Svc *discUC.Service }

// ServeHTTP triggers one validate cycle immediately.
// @Summary      Trigger discovery validation
// @Tags         discovery
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {object} map[string]int
// @Router       /discovery/validate [post]
func (h ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	processed, err := h.Svc.Validate(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"processed": processed})
}

type CandidatesHandler struct{ Svc *discUC.Service }

// ServeHTTP lists discovery candidates, optionally filtered by status.
// @Summary      List discovery candidates
// @Tags         discovery
// @Security     APIKeyAuth
// @Produce      json
// @Param        status query string false "discovered|validating|validated|approved|rejected"
// @Success      200 {array} CandidateDTO
// @Router       /discovery/candidates [get]
func (h CandidatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := entity.CandidateStatus(r.URL.Query().Get("status"))
	candidates, err := h.Svc.ListCandidates(r.Context(), status)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]CandidateDTO, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, toCandidateDTO(c))
	}
	respond.JSON(w, http.StatusOK, out)
}

type ApproveHandler struct{ Svc *discUC.Service }

// ServeHTTP approves a candidate regardless of its combined score.
// @Summary      Approve discovery candidate
// @Tags         discovery
// @Security     APIKeyAuth
// @Param        id path string true "Candidate ID"
// @Success      204 "No Content"
// @Failure      404 {string} string "candidate not found"
// @Router       /discovery/candidates/{id}/approve [post]
func (h ApproveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := extractCandidateID(r.URL.Path, "/approve")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Approve(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, discovery.ErrCandidateNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type RejectHandler struct{ Svc *discUC.Service }

// ServeHTTP rejects a candidate.
// @Summary      Reject discovery candidate
// @Tags         discovery
// @Security     APIKeyAuth
// @Param        id path string true "Candidate ID"
// @Success      204 "No Content"
// @Failure      404 {string} string "candidate not found"
// @Router       /discovery/candidates/{id}/reject [post]
func (h RejectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := extractCandidateID(r.URL.Path, "/reject")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Reject(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, discovery.ErrCandidateNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// extractCandidateID pulls the candidate ID out of
// "/discovery/candidates/{id}/approve" (or "/reject"), since
// pathutil.ExtractStringID's single-segment check would otherwise reject
// the trailing action as an embedded path separator.
func extractCandidateID(path, actionSuffix string) (string, error) {
	const prefix = "/discovery/candidates/"
	rest := strings.TrimPrefix(path, prefix)
	if !strings.HasSuffix(rest, actionSuffix) {
		return "", pathutil.ErrInvalidID
	}
	id := strings.TrimSuffix(rest, actionSuffix)
	if id == "" || strings.Contains(id, "/") {
		return "", pathutil.ErrInvalidID
	}
	return id, nil
}

type probeRequest struct {
	URL string `json:"url"`
}

type ProbeHandler struct{ Svc *discUC.Service }

// ServeHTTP checks whether an arbitrary URL looks like a viable source,
// without persisting a candidate record.
// @Summary      Probe a candidate URL
// @Tags         discovery
// @Security     APIKeyAuth
// @Accept       json
// @Produce      json
// @Param        request body probeRequest true "URL to probe"
// @Success      200 {object} ProbeDTO
// @Failure      400 {string} string "invalid URL"
// @Router       /discovery/probe [post]
func (h ProbeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.Svc.Probe(r.Context(), req.URL)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, http.StatusOK, toProbeDTO(result))
}
