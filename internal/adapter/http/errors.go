package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/couchcryptid/place-picker/internal/catalog"
	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/picker"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// apiError is the JSON body of every failed API call.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

func newAPIError(code, message string, status int) *apiError {
	return &apiError{Code: code, Message: message, Status: status}
}

var (
	errInvalidInput  = newAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	errPlaceNotFound = newAPIError("NOT_FOUND", "Place not found", http.StatusNotFound)
)

// toAPIError maps workflow and remote failures onto HTTP statuses. The message
// is the one recorded for the user.
func toAPIError(err error) *apiError {
	var (
		remote *domain.RemoteError
		decode *domain.DecodeError
	)
	switch {
	case errors.Is(err, picker.ErrPlacesNotLoaded), errors.Is(err, catalog.ErrNotLoaded):
		return newAPIError("NOT_LOADED", err.Error(), http.StatusConflict)
	case errors.Is(err, picker.ErrNoRemovalPending):
		return newAPIError("CONFLICT", err.Error(), http.StatusConflict)
	case errors.As(err, &remote):
		e := newAPIError("REMOTE_ERROR", remote.Message, http.StatusBadGateway)
		e.Details = remote.Op
		return e
	case errors.As(err, &decode):
		return newAPIError("BAD_REMOTE_RESPONSE", err.Error(), http.StatusBadGateway)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newAPIError("UNAVAILABLE", err.Error(), http.StatusServiceUnavailable)
	default:
		return newAPIError("INTERNAL_SERVER_ERROR", domain.MessageOr(err, "Internal server error"), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, e *apiError) {
	sharedobs.WriteJSON(w, e.Status, e)
}
