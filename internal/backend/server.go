package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/place-picker/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
)

// UpdatedMessage is returned by a successful PUT /user-places.
const UpdatedMessage = "User places updated!"

type placesBody struct {
	Places []domain.Place `json:"places"`
}

type replaceBody struct {
	Places *[]domain.Place `json:"places"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Server serves the catalog and the user's places over HTTP.
type Server struct {
	httpServer *http.Server
	catalog    []domain.Place
	store      Store
	logger     *slog.Logger
}

// NewServer creates the reference places service.
func NewServer(addr string, catalog []domain.Place, store Store, logger *slog.Logger) *Server {
	r := mux.NewRouter()
	r.Use(allowAnyOrigin)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		store:   store,
		logger:  logger,
	}

	r.HandleFunc("/places", s.handlePlaces).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/user-places", s.handleUserPlaces).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/user-places", s.handleReplaceUserPlaces).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(s)).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sharedobs.WriteJSON(w, http.StatusNotFound, messageBody{Message: "404 - Not Found"})
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("places service starting", "addr", s.httpServer.Addr, "catalog", len(s.catalog))
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

// CheckReadiness delegates to the store when it can report readiness.
func (s *Server) CheckReadiness(ctx context.Context) error {
	if rc, ok := s.store.(sharedobs.ReadinessChecker); ok {
		return rc.CheckReadiness(ctx)
	}
	return nil
}

func (s *Server) handlePlaces(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, placesBody{Places: s.catalog})
}

func (s *Server) handleUserPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.store.UserPlaces(r.Context())
	if err != nil {
		s.logger.Error("load user places", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, messageBody{Message: "Failed to load user places."})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, placesBody{Places: places})
}

func (s *Server) handleReplaceUserPlaces(w http.ResponseWriter, r *http.Request) {
	var body replaceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Places == nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, messageBody{Message: "Request body must be {\"places\": [...]}."})
		return
	}
	for _, p := range *body.Places {
		if err := p.Validate(); err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, messageBody{Message: err.Error()})
			return
		}
	}

	if err := s.store.ReplaceUserPlaces(r.Context(), *body.Places); err != nil {
		s.logger.Error("replace user places", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, messageBody{Message: "Failed to store user places."})
		return
	}
	s.logger.Info("user places replaced", "places", len(*body.Places))
	sharedobs.WriteJSON(w, http.StatusOK, messageBody{Message: UpdatedMessage})
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
