package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "notewise/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a chi router with all the application's
// routes.
func NewRouter(chatHandler *ChatHandler, providerHandler *ProviderHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Serves the auto-generated Swagger UI for API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Health check endpoint for container orchestration probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON API routes get a request timeout so client
		// connections never hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/settings", chatHandler.GetSettings)
			r.Post("/settings", chatHandler.UpdateSettings)

			r.Get("/sessions", chatHandler.GetSessions)
			r.Get("/sessions/{sessionID}", chatHandler.GetSession)
			r.Put("/sessions/{sessionID}/title", chatHandler.UpdateSessionTitle)
			r.Delete("/sessions/{sessionID}", chatHandler.HandleDeleteSession)
			r.Post("/sessions/{sessionID}/cancel", chatHandler.HandleCancel)
			r.Post("/sessions/{sessionID}/intent", chatHandler.HandleResolveIntent)

			r.Get("/providers", providerHandler.HandleListProviders)
			r.Post("/analyze", providerHandler.HandleAnalyze)
		})

		// Streaming endpoints hold a connection open for the whole
		// generation and must not have a timeout.
		r.Group(func(r chi.Router) {
			r.Post("/sessions/messages", chatHandler.HandleStreamMessage)
		})
	})

	return r
}
