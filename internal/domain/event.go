package domain

import (
	"time"

	"github.com/google/uuid"
)

// Change operations recorded on PicksChanged.
const (
	OpSelect = "select"
	OpRemove = "remove"
)

// PicksChanged describes a picked-places update the remote service accepted.
type PicksChanged struct {
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	PlaceID    string    `json:"place_id"`
	PlaceIDs   []string  `json:"place_ids"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPicksChanged builds the event for an accepted update. places is the list
// the remote service now holds.
func NewPicksChanged(op string, place Place, places []Place, message string) PicksChanged {
	return PicksChanged{
		ID:         uuid.NewString(),
		Op:         op,
		PlaceID:    place.ID,
		PlaceIDs:   IDs(places),
		Message:    message,
		OccurredAt: clock.Now().UTC(),
	}
}
