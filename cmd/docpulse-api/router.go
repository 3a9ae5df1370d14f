// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docpulse/docpulse/cmd/docpulse-api/handlers"
	"github.com/docpulse/docpulse/cmd/docpulse-api/middleware"
	"github.com/docpulse/docpulse/internal/config"
	"github.com/docpulse/docpulse/internal/detect"
	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/session"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config,
	store *session.Store, runner *detect.Runner) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"docpulse-api"}`))
	})

	documentHandler := handlers.NewDocumentHandler(logger, store, runner,
		cfg.Upload.Dir, cfg.Upload.MaxSizeMB<<20)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload-document", documentHandler.Upload)
		r.Get("/detection-status/{clientID}", documentHandler.Status)
	})

	return r
}
