package router

import (
	"net/http"

	"gameshelf-sync-api/internal/handler"
	"gameshelf-sync-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler            *handler.Handler
	SyncHandler        *handler.SyncHandler
	GamesHandler       *handler.GamesHandler
	AdminKeyMiddleware func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Admin-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Read-only games endpoints
		if cfg.GamesHandler != nil {
			r.Route("/games", func(r chi.Router) {
				r.Get("/", cfg.GamesHandler.List)
				r.Get("/{gameId}", cfg.GamesHandler.Get)
			})
		}

		// Admin endpoints, guarded by the shared key
		if cfg.SyncHandler != nil {
			r.Group(func(r chi.Router) {
				if cfg.AdminKeyMiddleware != nil {
					r.Use(cfg.AdminKeyMiddleware)
				}
				r.Route("/admin", func(r chi.Router) {
					r.Post("/sync/vendor", cfg.SyncHandler.SyncVendor)
					r.Post("/sync/store", cfg.SyncHandler.SyncStore)
					r.Post("/sync/images", cfg.SyncHandler.SyncImages)
					r.Get("/stats", cfg.SyncHandler.Stats)
				})
			})
		}
	})

	return r
}
