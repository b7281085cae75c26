package article

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
	artUC "catchup-feed/internal/usecase/article"
)

const (
	maxKeywordCount  = 10
	maxKeywordLength = 100
)

// SearchHandler implements keyword and filtered search over articles,
// paginated. Keyword matching is AND across terms.
type SearchHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
}

// parseKeywords splits a whitespace-separated keyword string, rejecting
// inputs that would blow up the underlying SQL ILIKE clause list.
func parseKeywords(raw string) ([]string, error) {
	fields := strings.Fields(raw)
	if len(fields) > maxKeywordCount {
		return nil, fmt.Errorf("too many keywords: max %d", maxKeywordCount)
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > maxKeywordLength {
			return nil, fmt.Errorf("keyword too long: max %d characters", maxKeywordLength)
		}
		out = append(out, f)
	}
	return out, nil
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

// ServeHTTP searches articles by keyword and optional filters.
// @Summary      Search articles
// @Description  Keyword (AND) and filter search over enriched articles, paginated
// @Tags         articles
// @Security     APIKeyAuth
// @Produce      json
// @Param        keyword query string false "space-separated keywords"
// @Param        source_id query string false "filter by source ID"
// @Param        topic query string false "comma-separated primary/secondary topics"
// @Param        region query string false "comma-separated regions"
// @Param        language query string false "comma-separated ISO 639-1 language codes"
// @Param        transport_mode query string false "comma-separated transport modes"
// @Param        sentiment query string false "comma-separated sentiment values"
// @Param        urgency_min query string false "minimum urgency: low, medium, high"
// @Param        from query string false "published-after (RFC3339)"
// @Param        to query string false "published-before (RFC3339)"
// @Param        page query int false "page number" default(1)
// @Param        limit query int false "items per page" default(20)
// @Success      200 {object} PaginatedResponse
// @Failure      400 {string} string "bad request"
// @Failure      500 {string} string "internal server error"
// @Router       /articles/search [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var keywords []string
	if kw := r.URL.Query().Get("keyword"); kw != "" {
		keywords, err = parseKeywords(kw)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid keyword: %w", err))
			return
		}
	}

	var filters repository.ArticleSearchFilters
	if sid := r.URL.Query().Get("source_id"); sid != "" {
		filters.SourceID = &sid
	}
	filters.TopicIn = splitCSV(r.URL.Query().Get("topic"))
	filters.RegionIn = splitCSV(r.URL.Query().Get("region"))
	filters.LanguageIn = splitCSV(r.URL.Query().Get("language"))
	filters.TransportModeIn = splitCSV(r.URL.Query().Get("transport_mode"))
	filters.SentimentIn = splitCSV(r.URL.Query().Get("sentiment"))
	if u := entity.Urgency(r.URL.Query().Get("urgency_min")); u != "" {
		if !u.Valid() {
			respond.SafeError(w, http.StatusBadRequest, errors.New("invalid urgency_min"))
			return
		}
		filters.UrgencyMin = u
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid from date: %w", err))
			return
		}
		filters.From = &from
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid to date: %w", err))
			return
		}
		filters.To = &to
	}
	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		respond.SafeError(w, http.StatusBadRequest, errors.New("from must be before or equal to to"))
		return
	}

	result, err := h.Svc.Search(r.Context(), keywords, filters, params)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, a := range result.Data {
		dtos = append(dtos, toDTO(a))
	}

	respond.JSON(w, http.StatusOK, PaginatedResponse{Data: dtos, Pagination: result.Pagination})
}

// PaginatedResponse is the response envelope for paginated search results.
type PaginatedResponse struct {
	Data       []DTO               `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
}
