package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(CORSMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
	})

	r.Route("/api/panels", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(5 * time.Second))
			r.Get("/", h.ListPanels)
			r.Get("/catalogue", h.GetCatalogue)
			r.Get("/{panel}/events", h.ListPanelEvents)
			r.Delete("/{panel}/events", h.DismissAllEvents)
			r.Delete("/{panel}/events/{id}", h.DismissEvent)
			r.Post("/{panel}/start", h.StartPanel)
			r.Post("/{panel}/stop", h.StopPanel)
		})

		// Streams stay open for as long as the client listens.
		r.Get("/{panel}/stream", h.StreamPanel)
	})

	r.Route("/api/journal", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", h.ListJournal)
		r.Delete("/", h.CleanupJournal)
		r.Get("/events/{id}", h.GetEventJournal)
	})

	return r
}
