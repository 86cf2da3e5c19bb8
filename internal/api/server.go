// Package api exposes the rendering pipeline over HTTP.
//
// Routes are grouped under /api. Uploads are JSON bodies carrying the
// template document, an optional explicit column mapping, and the CSV
// payload; responses are JSON except for asset, manifest and archive
// downloads which stream files.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bannerforge/bannerforge/pkg/batch"
	"github.com/bannerforge/bannerforge/pkg/buildinfo"
	"github.com/bannerforge/bannerforge/pkg/job"
)

// Server wires the orchestrator and job store into an HTTP handler.
type Server struct {
	orch   *batch.Orchestrator
	store  job.Store
	logger *log.Logger
}

// NewServer creates a server. If logger is nil, the default logger is used.
func NewServer(orch *batch.Orchestrator, store job.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{orch: orch, store: store, logger: logger}
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Post("/templates/validate", s.handleValidateTemplate)
		r.Post("/preview", s.handlePreview)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Post("/", s.handleCreateJob)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetJob)
				r.Post("/cancel", s.handleCancelJob)
				r.Get("/manifest", s.handleManifest)
				r.Get("/archive", s.handleArchive)
				r.Get("/assets/{index}", s.handleAsset)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}
