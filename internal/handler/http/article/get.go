package article

import (
	"errors"
	"net/http"

	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	artUC "catchup-feed/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP returns a single enriched article by ID.
// @Summary      Get article
// @Description  Returns a single article, including enrichment fields once available
// @Tags         articles
// @Security     APIKeyAuth
// @Produce      json
// @Param        id path string true "Article ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "invalid article ID"
// @Failure      404 {string} string "article not found"
// @Failure      500 {string} string "internal server error"
// @Router       /articles/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, artUC.ErrInvalidArticleID):
			code = http.StatusBadRequest
		case errors.Is(err, artUC.ErrArticleNotFound):
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(a))
}
