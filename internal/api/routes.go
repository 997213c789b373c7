package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. Tracking callbacks live outside
// /api because email clients hit them directly.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/settings/{clientID}", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.PutSettings)
			r.Delete("/", h.DeleteSettings)
		})

		r.Post("/score", h.ScoreProspect)

		r.Get("/templates/{campaignID}/{room}", h.GetTemplates)

		r.Route("/emails", func(r chi.Router) {
			r.Post("/generate", h.GenerateEmail)
			r.Post("/{trackingID}/copy", h.MarkCopied)
		})
	})

	r.Route("/track", func(r chi.Router) {
		r.Get("/open/{token}/{sig}", h.TrackOpen)
		r.Get("/click/{token}/{sig}", h.TrackClick)
	})

	return r
}
