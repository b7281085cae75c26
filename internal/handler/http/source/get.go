package source

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catchup-feed/internal/handler/http/respond"
	srcUC "catchup-feed/internal/usecase/source"
)

const defaultFetchLogLimit = 20

type GetHandler struct{ Svc *srcUC.Service }

// ServeHTTP returns a single source by ID.
// @Summary      Get source
// @Tags         sources
// @Security     APIKeyAuth
// @Produce      json
// @Param        id path string true "Source ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "invalid source ID"
// @Failure      404 {string} string "source not found"
// @Failure      500 {string} string "internal server error"
// @Router       /sources/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sources/")
	if id == "" || strings.Contains(id, "/") {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid source ID"))
		return
	}

	s, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, srcUC.ErrSourceNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(s))
}

// FetchLogsHandler returns the recent fetch attempts for a source.
type FetchLogsHandler struct{ Svc *srcUC.Service }

// ServeHTTP returns the most recent fetch log entries for a source.
// @Summary      Source fetch logs
// @Tags         sources
// @Security     APIKeyAuth
// @Produce      json
// @Param        id path string true "Source ID"
// @Param        limit query int false "max entries" default(20)
// @Success      200 {array} FetchLogDTO
// @Failure      400 {string} string "invalid source ID"
// @Failure      500 {string} string "internal server error"
// @Router       /sources/{id}/fetch-logs [get]
func (h FetchLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/sources/"), "/fetch-logs")
	if id == "" || strings.Contains(id, "/") {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid source ID"))
		return
	}

	limit := defaultFetchLogLimit
	if ls := r.URL.Query().Get("limit"); ls != "" {
		n, err := strconv.Atoi(ls)
		if err != nil || n <= 0 {
			respond.SafeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		limit = n
	}

	logs, err := h.Svc.RecentFetchLogs(r.Context(), id, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]FetchLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, toFetchLogDTO(l))
	}
	respond.JSON(w, http.StatusOK, out)
}
