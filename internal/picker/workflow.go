// Package picker maintains the user's picked places: it loads the list, applies
// add and remove operations optimistically, persists them to the remote
// service, and rolls back to the pre-operation snapshot when persistence fails.
//
// Operations are single-flight. A second add or remove waits until the one in
// flight has been persisted or rolled back, so every operation computes both
// its optimistic value and its persisted payload from the same snapshot.
package picker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/fetch"
	"github.com/couchcryptid/place-picker/internal/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Messages shown when a failure carries no message of its own.
const (
	UpdateErrorTitle          = "An error occurred!"
	DefaultSelectErrorMessage = "Failed to update places."
	DefaultRemoveErrorMessage = "Failed to delete place."
)

var (
	// ErrPlacesNotLoaded is returned when an update is attempted before the
	// user's places have been loaded.
	ErrPlacesNotLoaded = errors.New("user places are not loaded yet")

	// ErrNoRemovalPending is returned by ConfirmRemoval when no removal was requested.
	ErrNoRemovalPending = errors.New("no removal awaiting confirmation")
)

// Store persists the user's picked places.
type Store interface {
	ListUserPlaces(ctx context.Context) ([]domain.Place, error)
	ReplaceUserPlaces(ctx context.Context, places []domain.Place) (string, error)
}

// ChangePublisher is told about every update the remote service accepted.
type ChangePublisher interface {
	PublishChange(ctx context.Context, evt domain.PicksChanged) error
}

// UpdateError is the most recent add/remove failure, kept until dismissed.
type UpdateError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Op      string `json:"op"`
}

// Removal is the state of the removal confirmation.
type Removal struct {
	Place domain.Place
	Open  bool
}

// Workflow coordinates the picked-places list.
type Workflow struct {
	store     Store
	places    *fetch.Fetcher[[]domain.Place]
	inflight  *semaphore.Weighted
	publisher ChangePublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu        sync.Mutex
	target    *domain.Place
	confirm   bool
	updateErr *UpdateError
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithPublisher sends accepted updates to p.
func WithPublisher(p ChangePublisher) Option {
	return func(w *Workflow) { w.publisher = p }
}

// New creates a Workflow. Nothing is fetched until Start.
func New(store Store, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Workflow {
	w := &Workflow{
		store:    store,
		inflight: semaphore.NewWeighted(1),
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.places = fetch.New(store.ListUserPlaces,
		fetch.WithLogger(logger.With("resource", "user_places")),
		fetch.WithObserver(func(outcome string) {
			metrics.Fetches.WithLabelValues("user_places", outcome).Inc()
		}),
	)
	return w
}

// Start loads the user's places. Later calls are no-ops.
func (w *Workflow) Start(ctx context.Context) {
	w.places.Activate(ctx)
}

// Places returns the fetch state of the picked list.
func (w *Workflow) Places() fetch.State[[]domain.Place] {
	return w.places.State()
}

// Wait blocks until the initial load settles.
func (w *Workflow) Wait(ctx context.Context) (fetch.State[[]domain.Place], error) {
	return w.places.Wait(ctx)
}

// SelectPlace adds candidate to the front of the list and persists the result.
// A candidate already in the list is ignored and nothing is sent. On failure
// the list is restored and the failure is recorded as the update error.
func (w *Workflow) SelectPlace(ctx context.Context, candidate domain.Place) error {
	release, err := w.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	logger := w.logger.With("op", domain.OpSelect, "op_id", uuid.NewString(), "place_id", candidate.ID)

	state := w.places.State()
	if !state.Loaded {
		w.fail(logger, domain.OpSelect, ErrPlacesNotLoaded, DefaultSelectErrorMessage)
		return ErrPlacesNotLoaded
	}
	snapshot := state.Data
	if domain.ContainsID(snapshot, candidate.ID) {
		w.metrics.Updates.WithLabelValues(domain.OpSelect, "noop").Inc()
		logger.Debug("place already picked")
		return nil
	}

	next := domain.Prepend(candidate, snapshot)
	return w.commit(ctx, logger, domain.OpSelect, candidate, snapshot, next, DefaultSelectErrorMessage)
}

// RemovePlace drops target from the list and persists the result. On failure
// the list is restored and the failure is recorded as the update error. The
// removal confirmation is closed either way.
func (w *Workflow) RemovePlace(ctx context.Context, target domain.Place) error {
	defer w.closeConfirmation()

	release, err := w.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	logger := w.logger.With("op", domain.OpRemove, "op_id", uuid.NewString(), "place_id", target.ID)

	state := w.places.State()
	if !state.Loaded {
		w.fail(logger, domain.OpRemove, ErrPlacesNotLoaded, DefaultRemoveErrorMessage)
		return ErrPlacesNotLoaded
	}
	snapshot := state.Data
	next := domain.Without(snapshot, target.ID)
	return w.commit(ctx, logger, domain.OpRemove, target, snapshot, next, DefaultRemoveErrorMessage)
}

// commit applies next locally, persists it, and restores snapshot on failure.
func (w *Workflow) commit(ctx context.Context, logger *slog.Logger, op string, place domain.Place, snapshot, next []domain.Place, fallback string) error {
	w.places.Set(next)

	msg, err := w.store.ReplaceUserPlaces(ctx, next)
	if err != nil {
		w.places.Set(snapshot)
		w.metrics.Updates.WithLabelValues(op, "rolled_back").Inc()
		w.fail(logger, op, err, fallback)
		return err
	}

	w.metrics.Updates.WithLabelValues(op, "committed").Inc()
	logger.Info("user places updated", "places", len(next), "message", msg)
	w.publish(ctx, logger, domain.NewPicksChanged(op, place, next, msg))
	return nil
}

func (w *Workflow) fail(logger *slog.Logger, op string, err error, fallback string) {
	logger.Warn("user places update failed", "error", err)
	w.mu.Lock()
	w.updateErr = &UpdateError{
		Title:   UpdateErrorTitle,
		Message: domain.MessageOr(err, fallback),
		Op:      op,
	}
	w.mu.Unlock()
}

func (w *Workflow) publish(ctx context.Context, logger *slog.Logger, evt domain.PicksChanged) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.PublishChange(ctx, evt); err != nil {
		w.metrics.ChangeEventsPublished.WithLabelValues("error").Inc()
		logger.Error("publish change event failed", "event_id", evt.ID, "error", err)
		return
	}
	w.metrics.ChangeEventsPublished.WithLabelValues("success").Inc()
}

func (w *Workflow) acquire(ctx context.Context) (func(), error) {
	w.metrics.UpdatesWaiting.Inc()
	err := w.inflight.Acquire(ctx, 1)
	w.metrics.UpdatesWaiting.Dec()
	if err != nil {
		return nil, err
	}
	return func() { w.inflight.Release(1) }, nil
}

// RequestRemoval remembers p and opens the removal confirmation.
func (w *Workflow) RequestRemoval(p domain.Place) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.target = &p
	w.confirm = true
}

// CancelRemoval closes the confirmation without removing anything.
func (w *Workflow) CancelRemoval() {
	w.closeConfirmation()
}

// ConfirmRemoval removes the place passed to the last RequestRemoval.
func (w *Workflow) ConfirmRemoval(ctx context.Context) error {
	w.mu.Lock()
	if !w.confirm || w.target == nil {
		w.mu.Unlock()
		return ErrNoRemovalPending
	}
	target := *w.target
	w.mu.Unlock()

	return w.RemovePlace(ctx, target)
}

// Removal reports the confirmation state and the place it targets.
func (w *Workflow) Removal() Removal {
	w.mu.Lock()
	defer w.mu.Unlock()
	var r Removal
	if w.target != nil {
		r.Place = *w.target
	}
	r.Open = w.confirm
	return r
}

func (w *Workflow) closeConfirmation() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.confirm = false
}

// UpdateError returns the last update failure, if one has not been dismissed.
func (w *Workflow) UpdateError() (UpdateError, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.updateErr == nil {
		return UpdateError{}, false
	}
	return *w.updateErr, true
}

// DismissUpdateError clears the update error.
func (w *Workflow) DismissUpdateError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updateErr = nil
}

// CheckReadiness reports whether the user's places have loaded.
func (w *Workflow) CheckReadiness(_ context.Context) error {
	state := w.places.State()
	if state.Err != nil {
		return state.Err
	}
	if !state.Loaded {
		return ErrPlacesNotLoaded
	}
	return nil
}
