package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	subUC "catchup-feed/internal/usecase/subscription"
)

type ListHandler struct{ Svc *subUC.Service }

// ServeHTTP lists enabled subscriptions.
// @Summary      List subscriptions
// @Tags         subscriptions
// @Security     APIKeyAuth
// @Produce      json
// @Success      200 {array} DTO
// @Router       /subscriptions [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, toDTO(s))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *subUC.Service }

// ServeHTTP returns one subscription by ID.
// @Summary      Get subscription
// @Tags         subscriptions
// @Security     APIKeyAuth
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} DTO
// @Failure      404 {string} string "subscription not found"
// @Router       /subscriptions/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/subscriptions/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	sub, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, subUC.ErrSubscriptionNotFound) || errors.Is(err, subUC.ErrInvalidSubscriptionID) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(sub))
}

type createRequest struct {
	Filter        FilterDTO `json:"filter"`
	Channel       string    `json:"channel"`
	WebhookURL    string    `json:"webhook_url"`
	WebhookSecret string    `json:"webhook_secret"`
	Frequency     string    `json:"frequency"`
}

type CreateHandler struct{ Svc *subUC.Service }

// ServeHTTP creates a subscription.
// @Summary      Create subscription
// @Tags         subscriptions
// @Security     APIKeyAuth
// @Accept       json
// @Produce      json
// @Param        subscription body createRequest true "Subscription"
// @Success      201 {object} DTO
// @Failure      400 {string} string "invalid subscription"
// @Router       /subscriptions [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	sub, err := h.Svc.Create(r.Context(), subUC.CreateInput{
		Filter:        toFilter(req.Filter),
		Channel:       parseChannel(req.Channel),
		WebhookURL:    req.WebhookURL,
		WebhookSecret: req.WebhookSecret,
		Frequency:     parseFrequency(req.Frequency),
	})
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(sub))
}

type updateRequest struct {
	Filter        *FilterDTO `json:"filter"`
	WebhookURL    string     `json:"webhook_url"`
	WebhookSecret string     `json:"webhook_secret"`
	Frequency     string     `json:"frequency"`
	Enabled       *bool      `json:"enabled"`
}

type UpdateHandler struct{ Svc *subUC.Service }

// ServeHTTP updates a subscription.
// @Summary      Update subscription
// @Tags         subscriptions
// @Security     APIKeyAuth
// @Accept       json
// @Param        id path string true "Subscription ID"
// @Param        subscription body updateRequest true "Fields to update"
// @Success      204 "No Content"
// @Failure      400 {string} string "invalid subscription"
// @Failure      404 {string} string "subscription not found"
// @Router       /subscriptions/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/subscriptions/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	in := subUC.UpdateInput{
		ID:            id,
		WebhookURL:    req.WebhookURL,
		WebhookSecret: req.WebhookSecret,
		Frequency:     parseFrequency(req.Frequency),
		Enabled:       req.Enabled,
	}
	if req.Filter != nil {
		f := toFilter(*req.Filter)
		in.Filter = &f
	}

	if err := h.Svc.Update(r.Context(), in); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, subUC.ErrSubscriptionNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DeleteHandler struct{ Svc *subUC.Service }

// ServeHTTP deletes a subscription.
// @Summary      Delete subscription
// @Tags         subscriptions
// @Security     APIKeyAuth
// @Param        id path string true "Subscription ID"
// @Success      204 "No Content"
// @Failure      400 {string} string "invalid subscription ID"
// @Router       /subscriptions/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractStringID(r.URL.Path, "/subscriptions/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseChannel(s string) entity.Channel     { return entity.Channel(s) }
func parseFrequency(s string) entity.Frequency { return entity.Frequency(s) }
