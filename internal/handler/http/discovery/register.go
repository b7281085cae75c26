package discovery

import (
	"net/http"

	discUC "catchup-feed/internal/usecase/discovery"
)

// Register wires the discovery control routes. All require the "admin"
// API key role.
func Register(mux *http.ServeMux, svc *discUC.Service) {
	mux.Handle("POST /discovery/start", StartHandler{Svc: svc})
	mux.Handle("POST /discovery/stop", StopHandler{Svc: svc})
	mux.Handle("GET  /discovery/status", StatusHandler{Svc: svc})
	mux.Handle("POST /discovery/scan", ScanHandler{Svc: svc})
	mux.Handle("POST /discovery/validate", ValidateHandler{Svc: svc})
	mux.Handle("POST /discovery/probe", ProbeHandler{Svc: svc})
	mux.Handle("POST /discovery/candidates/{id}/approve", ApproveHandler{Svc: svc})
	mux.Handle("POST /discovery/candidates/{id}/reject", RejectHandler{Svc: svc})
	mux.Handle("GET  /discovery/candidates", CandidatesHandler{Svc: svc})
}
