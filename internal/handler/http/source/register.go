package source

import (
	"net/http"

	srcUC "catchup-feed/internal/usecase/source"
)

// Register registers the read-only source and fetch-log routes with the
// given mux. Sources are created by config seeding or discovery
// promotion; there is no create, update, or delete route here.
func Register(mux *http.ServeMux, svc *srcUC.Service) {
	mux.Handle("GET    /sources", ListHandler{Svc: svc})
	mux.Handle("GET    /sources/{id}/fetch-logs", FetchLogsHandler{Svc: svc})
	mux.Handle("GET    /sources/", GetHandler{Svc: svc})
}
