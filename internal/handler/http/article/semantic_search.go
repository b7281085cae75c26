package article

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catchup-feed/internal/enrichment"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
	artUC "catchup-feed/internal/usecase/article"
)

const defaultSimilarLimit = 10

// SemanticSearchHandler embeds a free-text query and returns the articles
// nearest to it by cosine similarity.
type SemanticSearchHandler struct {
	Svc      *artUC.Service
	Embedder enrichment.LLMProvider
}

// ServeHTTP performs a semantic (embedding) search over enriched articles.
// @Summary      Semantic search
// @Description  Embeds the query text and returns the nearest completed articles by cosine similarity
// @Tags         articles
// @Security     APIKeyAuth
// @Produce      json
// @Param        q query string true "free-text query"
// @Param        limit query int false "max results" default(10)
// @Success      200 {array} SimilarityDTO
// @Failure      400 {string} string "bad request"
// @Failure      500 {string} string "internal server error"
// @Router       /articles/search/semantic [get]
func (h SemanticSearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("q query param required"))
		return
	}

	limit, err := parseLimit(r, defaultSimilarLimit)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	vec, err := h.Embedder.Embed(r.Context(), q)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	sims, err := h.Svc.SimilaritySearch(r.Context(), vec, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSimilarityDTOs(sims))
}

// RelatedHandler returns the articles most similar to a given article's
// own embedding.
type RelatedHandler struct {
	Svc *artUC.Service
}

// ServeHTTP returns articles related to the one identified in the path.
// @Summary      Related articles
// @Description  Returns the nearest articles to the given article's embedding, excluding itself
// @Tags         articles
// @Security     APIKeyAuth
// @Produce      json
// @Param        id path string true "Article ID"
// @Param        limit query int false "max results" default(10)
// @Param        exclude_same_source query bool false "exclude articles from the same source" default(false)
// @Success      200 {array} SimilarityDTO
// @Failure      400 {string} string "bad request"
// @Failure      404 {string} string "article not found"
// @Failure      409 {string} string "article has not completed enrichment"
// @Failure      500 {string} string "internal server error"
// @Router       /articles/{id}/related [get]
func (h RelatedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := extractRelatedID(r.URL.Path)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	limit, err := parseLimit(r, defaultSimilarLimit)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	excludeSameSource, _ := strconv.ParseBool(r.URL.Query().Get("exclude_same_source"))

	sims, err := h.Svc.RelatedTo(r.Context(), id, limit, excludeSameSource)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, artUC.ErrInvalidArticleID):
			code = http.StatusBadRequest
		case errors.Is(err, artUC.ErrArticleNotFound):
			code = http.StatusNotFound
		case errors.Is(err, artUC.ErrNotEnriched):
			code = http.StatusConflict
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSimilarityDTOs(sims))
}

// extractRelatedID pulls the article ID out of "/articles/{id}/related".
func extractRelatedID(path string) (string, error) {
	const suffix = "/related"
	if !strings.HasSuffix(path, suffix) {
		return "", errors.New("invalid path")
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, "/articles/"), suffix)
	if id == "" || strings.Contains(id, "/") {
		return "", errors.New("invalid article ID")
	}
	return id, nil
}

func parseLimit(r *http.Request, def int) (int, error) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, nil
	}
	n, err := strconv.Atoi(ls)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid limit")
	}
	return n, nil
}

func toSimilarityDTOs(sims []repository.ArticleSimilarity) []SimilarityDTO {
	out := make([]SimilarityDTO, 0, len(sims))
	for _, s := range sims {
		out = append(out, SimilarityDTO{Article: toDTO(s.Article), Similarity: s.Similarity})
	}
	return out
}
