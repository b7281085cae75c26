package article

import (
	"log/slog"
	"net/http"
	"time"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/handler/http/requestid"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/observability/logging"
	artUC "catchup-feed/internal/usecase/article"
)

type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP returns a paginated list of enriched articles.
// @Summary      List articles
// @Description  Returns articles ordered by most recently published, paginated
// @Tags         articles
// @Security     APIKeyAuth
// @Produce      json
// @Param        page   query    int  false  "page number (1-based)" default(1)
// @Param        limit  query    int  false  "items per page" default(20)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "invalid query parameters"
// @Failure      500 {string} string "internal server error"
// @Router       /articles [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("invalid pagination parameters", "error", err.Error(), "request_id", reqID)
		pagination.RecordError("validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.List(ctx, params)
	if err != nil {
		logger.Error("failed to list articles", "error", err.Error(), "request_id", reqID)
		pagination.RecordError("database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, a := range result.Data {
		dtos = append(dtos, toDTO(a))
	}

	response := pagination.NewResponse(dtos, result.Pagination)

	pagination.RecordRequest(http.StatusOK, params.Page)
	pagination.RecordDuration("handler", time.Since(start).Seconds())
	pagination.UpdateTotalCount(result.Pagination.Total)

	respond.JSON(w, http.StatusOK, response)
}
