package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the picker API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz,
// and /metrics. /readyz succeeds once both the catalog and the user's places
// have loaded.
func NewServer(addr string, catalog Catalog, picks Picks, allowedOrigins []string, logger *slog.Logger) *Server {
	r := mux.NewRouter()
	r.Use(corsMiddleware(allowedOrigins))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	h := &handlers{catalog: catalog, picks: picks, logger: logger}
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/places", h.getPlaces).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/places/reload", h.reloadPlaces).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/user-places", h.getUserPlaces).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/user-places", h.selectPlace).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/user-places/{id}/removal", h.requestRemoval).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/removal", h.getRemoval).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/removal", h.cancelRemoval).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/removal/confirm", h.confirmRemoval).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/update-error", h.getUpdateError).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/update-error", h.dismissUpdateError).Methods(http.MethodDelete, http.MethodOptions)

	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(allReady{catalog, picks})).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// allReady is ready when every checker is.
type allReady []sharedobs.ReadinessChecker

func (a allReady) CheckReadiness(ctx context.Context) error {
	for _, c := range a {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// corsMiddleware answers preflight requests and echoes allowed origins.
// "*" allows any origin.
func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := false
			for _, o := range allowedOrigins {
				if origin != "" && (o == origin || o == "*") {
					allowed = true
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					break
				}
			}
			if allowed || origin == "" {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			// Preflights never reach a handler, whatever the origin.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
