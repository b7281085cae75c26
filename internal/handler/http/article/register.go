package article

import (
	"log/slog"
	"net/http"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/enrichment"
	"catchup-feed/internal/handler/http/middleware"
	artUC "catchup-feed/internal/usecase/article"
)

// Register registers the read-only article routes with the given mux.
// Articles are produced by the ingestion pipeline; there is no create,
// update, or delete route. search and search/semantic are protected by
// searchRateLimiter to bound the cost of keyword ILIKE and embedding calls.
func Register(mux *http.ServeMux, svc *artUC.Service, embedder enrichment.LLMProvider, paginationCfg pagination.Config, logger *slog.Logger, searchRateLimiter *middleware.RateLimiter) {
	mux.Handle("GET    /articles", ListHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	})
	mux.Handle("GET    /articles/search", searchRateLimiter.Middleware(SearchHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
	}))
	mux.Handle("GET    /articles/search/semantic", searchRateLimiter.Middleware(SemanticSearchHandler{
		Svc:      svc,
		Embedder: embedder,
	}))
	mux.Handle("GET    /articles/{id}/related", RelatedHandler{Svc: svc})
	mux.Handle("GET    /articles/", GetHandler{svc})
}
