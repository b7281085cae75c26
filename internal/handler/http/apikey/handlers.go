package apikey

import (
	"encoding/json"
	"errors"
	"net/http"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	apiKeyUC "catchup-feed/internal/usecase/apikey"
)

type ListHandler struct{ Svc *apiKeyUC.Service }

// ServeHTTP lists API keys (never their hash or plaintext).
// @Summary      List API keys
// @Tags         apikeys
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {array} DTO
// @Router       /apikeys [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(keys))
	for _, k := range keys {
		out = append(out, toDTO(k))
	}
	respond.JSON(w, http.StatusOK, out)
}

type createRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type CreateHandler struct{ Svc *apiKeyUC.Service }

// ServeHTTP mints a new API key. The plaintext key is returned exactly
// once, in this response.
// @Summary      Create API key
// @Tags         apikeys
// @Security     APIKeyAuth
// @Accept       json
// @Produce      json
// @Param        request body createRequest true "Key name and role"
// @Success      201 {object} CreatedDTO
// @Failure      400 {string} string "invalid request"
// @Router       /apikeys [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.Create(r.Context(), apiKeyUC.CreateInput{
		Name: req.Name,
		Role: entity.APIKeyRole(req.Role),
	})
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, http.StatusCreated, CreatedDTO{DTO: toDTO(res.Key), Key: res.RawKey})
}

type RevokeHandler struct{ Svc *apiKeyUC.Service }

// ServeHTTP disables an API key without deleting its audit record.
// @Summary      Revoke API key
// @Tags         apikeys
// @Security     APIKeyAuth
// @Param        id path string true "API key ID"
// @Success      204 "No Content"
// @Failure      400 {string} string "invalid key ID"
// @Failure      404 {string} string "API key not found"
// @Router       /apikeys/{id} [delete]
func (h RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/apikeys/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Revoke(r.Context(), id); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, apiKeyUC.ErrAPIKeyNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
