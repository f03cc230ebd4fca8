package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/probelabs/deepresearch/internal/api"
	apiMiddleware "github.com/probelabs/deepresearch/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	researchHandler := api.NewResearchHandler(app.research)
	streamHandler := api.NewStreamHandler(app.research, app.dispatcher)
	healthHandler := api.NewHealthHandler(app.research)

	r.Route("/api/research", func(r chi.Router) {
		r.Post("/", researchHandler.CreateTask)
		r.Get("/", researchHandler.ListTasks)
		r.Get("/{id}", researchHandler.GetTask)
		r.Get("/{id}/stream", streamHandler.StreamTask)
		r.Get("/{id}/findings", researchHandler.GetFindings)
		r.Get("/{id}/inferences", researchHandler.GetInferences)
		r.Get("/{id}/evals", researchHandler.GetEvalResults)
	})

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	return r
}
