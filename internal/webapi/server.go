package webapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-dedup/internal/middleware"
	"media-dedup/internal/store"
)

// Server exposes read-only catalog queries over HTTP. It answers from
// whatever the last scan persisted; it never triggers scans itself.
type Server struct {
	store   *store.Store
	version string
}

// New creates a query server backed by the given store.
func New(st *store.Store, version string) *Server {
	return &Server{
		store:   st,
		version: version,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logger(middleware.DefaultLoggingConfig()))
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/healthz", s.HealthCheck).Methods("GET")
	r.HandleFunc("/version", s.GetVersion).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", s.ListFiles).Methods("GET")
	api.HandleFunc("/files", s.DeleteFile).Methods("DELETE")
	api.HandleFunc("/groups/exact", s.ExactGroups).Methods("GET")
	api.HandleFunc("/groups/similar", s.SimilarGroups).Methods("GET")
	api.HandleFunc("/metadata", s.GetMetadata).Methods("GET")
	api.HandleFunc("/metadata", s.PutMetadata).Methods("PUT")
	api.HandleFunc("/snapshots", s.ListSnapshots).Methods("GET")

	return r
}

// HealthCheck reports whether the catalog database is reachable.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.CountFiles(r.Context()); err != nil {
		writeJSONError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ok")
}

// GetVersion returns the application version.
func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"version": s.version})
}
