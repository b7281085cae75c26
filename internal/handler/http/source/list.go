package source

import (
	"net/http"

	"catchup-feed/internal/handler/http/respond"
	srcUC "catchup-feed/internal/usecase/source"
)

type ListHandler struct{ Svc *srcUC.Service }

// ServeHTTP returns all configured sources.
// @Summary      List sources
// @Description  Returns all configured content sources, enabled or not
// @Tags         sources
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {array} DTO
// @Failure      500 {string} string "internal server error"
// @Router       /sources [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, s := range list {
		out = append(out, toDTO(s))
	}
	respond.JSON(w, http.StatusOK, out)
}
