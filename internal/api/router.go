package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", apiHandler.HealthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Get("/greeting", apiHandler.GreetingHandler)

			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/", apiHandler.ChatHandler)
				r.Post("/stream", apiHandler.StreamChatHandler)
			})
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)
			r.Post("/admin/documents", apiHandler.UploadDocumentHandler)
			r.Patch("/admin/snippets/{snippetID}", apiHandler.UpdateSnippetHandler)
		})
	})

	return r
}
