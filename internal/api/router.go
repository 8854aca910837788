package api

import (
	"net/http"
	"time"

	// Registers the generated OpenAPI document with swag.
	_ "fantasy-ai/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"fantasy-ai/backend/internal/auth"
)

// NewRouter wires every route of the API.
func NewRouter(ident Identifier, chatHandler *ChatHandler, characterHandler *CharacterHandler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.DeviceHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog routes need no identity.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/categories", characterHandler.GetCategories)
			r.Get("/categories/{category}/characters", characterHandler.GetCategoryCharacters)
			r.Get("/characters/{characterID}", characterHandler.GetCharacter)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity(ident))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(60 * time.Second))

				r.Get("/chats", chatHandler.GetChats)
				r.Get("/usage", chatHandler.GetUsage)

				r.Get("/sessions/{sessionID}", chatHandler.GetSession)
				r.Post("/sessions/{sessionID}/retry", chatHandler.RetrySession)
				r.Delete("/sessions/{sessionID}", chatHandler.CloseSession)
				r.Post("/transcriptions", chatHandler.Transcribe)
			})

			// Opening and sending wait on the completion service, and the event stream stays
			// open for the lifetime of the session, so these routes carry no timeout.
			r.Group(func(r chi.Router) {
				r.Post("/sessions", chatHandler.OpenSession)
				r.Post("/sessions/{sessionID}/messages", chatHandler.SendMessage)
				r.Get("/sessions/{sessionID}/events", chatHandler.StreamSessionEvents)
			})
		})
	})

	return r
}
