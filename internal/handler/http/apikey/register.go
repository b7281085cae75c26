package apikey

import (
	"net/http"

	apiKeyUC "catchup-feed/internal/usecase/apikey"
)

// Register wires the API key administration routes. All require the
// "admin" API key role (internal/handler/http/auth.RoleAdmin); roles.go's
// permission table grants admin the only "/*" entry, so these routes are
// unreachable by reader or subscriber keys without any extra check here.
func Register(mux *http.ServeMux, svc *apiKeyUC.Service) {
	mux.Handle("GET    /apikeys", ListHandler{Svc: svc})
	mux.Handle("POST   /apikeys", CreateHandler{Svc: svc})
	mux.Handle("DELETE /apikeys/{id}", RevokeHandler{Svc: svc})
}
