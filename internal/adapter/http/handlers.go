package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/fetch"
	"github.com/couchcryptid/place-picker/internal/picker"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
)

// Catalog is the distance-sorted place catalog.
type Catalog interface {
	State() fetch.State[[]domain.Place]
	Reload(ctx context.Context)
	Lookup(id string) (domain.Place, bool)
	CheckReadiness(ctx context.Context) error
}

// Picks is the user's picked-places workflow.
type Picks interface {
	Places() fetch.State[[]domain.Place]
	SelectPlace(ctx context.Context, candidate domain.Place) error
	RequestRemoval(p domain.Place)
	CancelRemoval()
	ConfirmRemoval(ctx context.Context) error
	Removal() picker.Removal
	UpdateError() (picker.UpdateError, bool)
	DismissUpdateError()
	CheckReadiness(ctx context.Context) error
}

// placesResponse renders a fetch state.
type placesResponse struct {
	IsFetching bool           `json:"is_fetching"`
	Error      *string        `json:"error"`
	Places     []domain.Place `json:"places"`
}

type removalResponse struct {
	Open  bool          `json:"open"`
	Place *domain.Place `json:"place"`
}

type updateErrorResponse struct {
	Error *picker.UpdateError `json:"error"`
}

type selectRequest struct {
	ID string `json:"id"`
}

func newPlacesResponse(s fetch.State[[]domain.Place]) placesResponse {
	resp := placesResponse{IsFetching: s.IsFetching, Places: s.Data}
	if resp.Places == nil {
		resp.Places = []domain.Place{}
	}
	if s.Err != nil {
		msg := s.Err.Message
		resp.Error = &msg
	}
	return resp
}

type handlers struct {
	catalog Catalog
	picks   Picks
	logger  *slog.Logger
}

func (h *handlers) getPlaces(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, newPlacesResponse(h.catalog.State()))
}

func (h *handlers) reloadPlaces(w http.ResponseWriter, r *http.Request) {
	// The load outlives the request.
	h.catalog.Reload(context.WithoutCancel(r.Context()))
	sharedobs.WriteJSON(w, http.StatusAccepted, newPlacesResponse(h.catalog.State()))
}

func (h *handlers) getUserPlaces(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, newPlacesResponse(h.picks.Places()))
}

func (h *handlers) selectPlace(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, errInvalidInput)
		return
	}
	place, ok := h.catalog.Lookup(req.ID)
	if !ok {
		writeError(w, errPlaceNotFound)
		return
	}
	// The update outlives the request so local state matches what the
	// backend stored even if the client goes away mid-save.
	if err := h.picks.SelectPlace(context.WithoutCancel(r.Context()), place); err != nil {
		h.logger.Debug("select place failed", "place_id", req.ID, "error", err)
		writeError(w, toAPIError(err))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, newPlacesResponse(h.picks.Places()))
}

func (h *handlers) requestRemoval(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, p := range h.picks.Places().Data {
		if p.ID == id {
			h.picks.RequestRemoval(p)
			sharedobs.WriteJSON(w, http.StatusOK, newRemovalResponse(h.picks.Removal()))
			return
		}
	}
	writeError(w, errPlaceNotFound)
}

func (h *handlers) getRemoval(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, newRemovalResponse(h.picks.Removal()))
}

func (h *handlers) cancelRemoval(w http.ResponseWriter, _ *http.Request) {
	h.picks.CancelRemoval()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) confirmRemoval(w http.ResponseWriter, r *http.Request) {
	if err := h.picks.ConfirmRemoval(context.WithoutCancel(r.Context())); err != nil {
		h.logger.Debug("confirm removal failed", "error", err)
		writeError(w, toAPIError(err))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, newPlacesResponse(h.picks.Places()))
}

func (h *handlers) getUpdateError(w http.ResponseWriter, _ *http.Request) {
	var resp updateErrorResponse
	if ue, ok := h.picks.UpdateError(); ok {
		resp.Error = &ue
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (h *handlers) dismissUpdateError(w http.ResponseWriter, _ *http.Request) {
	h.picks.DismissUpdateError()
	w.WriteHeader(http.StatusNoContent)
}

func newRemovalResponse(r picker.Removal) removalResponse {
	resp := removalResponse{Open: r.Open}
	if r.Place.ID != "" {
		p := r.Place
		resp.Place = &p
	}
	return resp
}
