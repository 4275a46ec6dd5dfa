package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/kol-metrics/internal/pkg/httputil"
)

// SetupRoutes configures all API routes. Every route is served both at the
// root and under /api.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	mount := func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
		r.Post("/fetch", h.HandleFetch)
		r.Get("/results", h.HandleListResults)
		r.Post("/results/{id}/note", h.HandleUpdateNote)
		r.Get("/export", h.HandleExport)
	}

	mount(r)
	r.Route("/api", mount)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.NotFound(w, "not found")
	})

	return r
}
