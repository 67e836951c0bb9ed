package router

import (
	"net/http"

	"wabridge/internal/handlers"
	"wabridge/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds all the route handlers
type Router struct {
	bridgeHandler *handlers.BridgeHandler
	healthHandler *handlers.HealthHandler
	sendLimiter   *middleware.RateLimiter
}

// NewRouter creates a new router instance
func NewRouter(bridgeHandler *handlers.BridgeHandler, healthHandler *handlers.HealthHandler, sendLimiter *middleware.RateLimiter) *Router {
	return &Router{
		bridgeHandler: bridgeHandler,
		healthHandler: healthHandler,
		sendLimiter:   sendLimiter,
	}
}

// SetupRoutes configures all the HTTP routes
func (rt *Router) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))

	r.Use(middleware.Logging)

	// The bridge binds to localhost; CORS only matters for the local UI.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthHandler.Health)
	r.Get("/ready", rt.healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", rt.bridgeHandler.Status)
		r.Get("/qr", rt.bridgeHandler.QR)
		r.Get("/incoming", rt.bridgeHandler.Incoming)
		r.With(rt.sendLimiter.Handler).Post("/send", rt.bridgeHandler.Send)
	})

	return r
}
