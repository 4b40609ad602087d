// Package http exposes the notification service API: dispatching events,
// reading the in-app feed, and the realtime websocket endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/danielBingham/communities-sub006/internal/notification"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// Handler holds the collaborators the API routes need.
type Handler struct {
	Dispatcher *notification.Dispatcher
	Store      port.NotificationStore
	Recipients port.RecipientRepository
	Hub        http.Handler
	BaseURL    string
	PageLimit  int
	Logger     *slog.Logger

	validate *validator.Validate
}

func NewHandler(dispatcher *notification.Dispatcher, store port.NotificationStore, recipients port.RecipientRepository, hub http.Handler, baseURL string, pageLimit int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if pageLimit <= 0 {
		pageLimit = 20
	}
	return &Handler{
		Dispatcher: dispatcher,
		Store:      store,
		Recipients: recipients,
		Hub:        hub,
		BaseURL:    baseURL,
		PageLimit:  pageLimit,
		Logger:     logger,
		validate:   validator.New(),
	}
}

// NewRouter assembles the chi router with the ambient middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/notifications", h.dispatchNotification)
		r.Post("/notifications/{notificationID}/read", h.markRead)
		r.Get("/users/{userID}/notifications", h.listNotifications)
		if h.Hub != nil {
			r.Handle("/ws", h.Hub)
		}
	})

	return otelhttp.NewHandler(r, "communities-notifications")
}
