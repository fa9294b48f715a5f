package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-fanout-api/internal/config"
	"github.com/go-fanout-api/internal/transport/http/handler"
	appmiddleware "github.com/go-fanout-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 20 requests/second, burst of 40 — applied to the public submit endpoint.
	submitRL := appmiddleware.NewRateLimiter(rate.Limit(20), 40)

	healthH := handler.NewHealthHandler()
	eventH := handler.NewEventHandler(deps.EventSvc)
	notifH := handler.NewNotificationHandler(deps.NotificationSvc)
	maintH := handler.NewMaintenanceHandler(deps.Recovery, deps.Retention)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(submitRL.Limit).Post("/events", eventH.Submit)
		r.Get("/events/{id}", eventH.Get)

		r.Route("/users/{userID}/notifications", func(r chi.Router) {
			r.Get("/", notifH.List)
			r.Get("/unread-count", notifH.UnreadCount)
			r.Put("/read-all", notifH.MarkAllRead)
			r.Put("/{id}/read", notifH.MarkRead)
			r.Delete("/{id}", notifH.Dismiss)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/recovery", maintH.RunRecovery)
			r.Post("/retention", maintH.RunRetention)
		})
	})

	return r
}
