// Package router assembles the HTTP surface: routes, middleware chain and the
// health endpoint.
package router

import (
	"net/http"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/handler"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// Middleware order is Recovery, Logging, CORS, then APIKeyAuth.
func New(
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Create)
			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.GetByID)
			r.Patch("/{id}", orderHandler.Update)
			r.Delete("/{id}", orderHandler.Delete)
			r.Post("/{id}/cancel", orderHandler.Cancel)
		})

		r.Get("/my-orders", orderHandler.MyOrders)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Get("/{id}", productHandler.GetByID)
		})
	})

	return r
}
