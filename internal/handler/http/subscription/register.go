package subscription

import (
	"net/http"

	subUC "catchup-feed/internal/usecase/subscription"
)

// Register wires the subscription CRUD routes. All require at least the
// "subscriber" API key role (internal/handler/http/auth.RoleSubscriber).
func Register(mux *http.ServeMux, svc *subUC.Service) {
	mux.Handle("GET    /subscriptions", ListHandler{Svc: svc})
	mux.Handle("POST   /subscriptions", CreateHandler{Svc: svc})
	mux.Handle("PUT    /subscriptions/{id}", UpdateHandler{Svc: svc})
	mux.Handle("DELETE /subscriptions/{id}", DeleteHandler{Svc: svc})
	mux.Handle("GET    /subscriptions/", GetHandler{Svc: svc})
}
