// Package catalog loads the place catalog and orders it by distance from the
// observer's current position.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/fetch"
	"github.com/couchcryptid/place-picker/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultLocationTimeout bounds the position lookup when no timeout is configured.
const DefaultLocationTimeout = 10 * time.Second

// ErrNotLoaded is reported by CheckReadiness until the first load succeeds.
var ErrNotLoaded = errors.New("catalog is not loaded yet")

// PlaceLister lists every place in the remote catalog.
type PlaceLister interface {
	ListCatalogPlaces(ctx context.Context) ([]domain.Place, error)
}

// Loader produces the catalog sorted by distance and keeps its fetch state.
type Loader struct {
	lister  PlaceLister
	locator domain.Locator
	timeout time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	fetcher *fetch.Fetcher[[]domain.Place]

	mu       sync.Mutex
	revision int
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock replaces the time source used for the location timeout.
func WithClock(c clockwork.Clock) Option {
	return func(l *Loader) { l.clock = c }
}

// NewLoader creates a Loader. Nothing is fetched until Start.
func NewLoader(lister PlaceLister, locator domain.Locator, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Loader {
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}
	l := &Loader{
		lister:  lister,
		locator: locator,
		timeout: timeout,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.fetcher = fetch.New(l.FetchSorted,
		fetch.WithLogger(logger.With("resource", "catalog")),
		fetch.WithObserver(func(outcome string) {
			metrics.Fetches.WithLabelValues("catalog", outcome).Inc()
		}),
	)
	return l
}

// FetchSorted lists the catalog, resolves the current position and returns the
// catalog ordered nearest first.
func (l *Loader) FetchSorted(ctx context.Context) ([]domain.Place, error) {
	places, err := l.lister.ListCatalogPlaces(ctx)
	if err != nil {
		return nil, err
	}

	origin, err := l.locate(ctx)
	if err != nil {
		return nil, err
	}

	sorted := domain.SortByDistance(places, origin)
	l.logger.Info("catalog loaded", "places", len(sorted), "origin_lat", origin.Lat, "origin_lon", origin.Lon)
	return sorted, nil
}

// locate asks the locator for a position and gives up after l.timeout. The
// locator's context is cancelled when locate returns.
func (l *Loader) locate(ctx context.Context) (domain.GeoCoordinate, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		pos domain.GeoCoordinate
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := l.locator.CurrentPosition(ctx)
		ch <- result{pos: pos, err: err}
	}()

	timer := l.clock.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			l.metrics.LocationLookups.WithLabelValues("error").Inc()
			l.logger.Warn("location lookup failed", "error", r.err)
			return domain.GeoCoordinate{}, &domain.LocationUnavailableError{Err: r.err}
		}
		l.metrics.LocationLookups.WithLabelValues("success").Inc()
		return r.pos, nil
	case <-timer.Chan():
		l.metrics.LocationLookups.WithLabelValues("timeout").Inc()
		l.logger.Warn("location lookup timed out", "timeout", l.timeout)
		return domain.GeoCoordinate{}, &domain.LocationUnavailableError{Err: domain.ErrLocationTimeout}
	case <-ctx.Done():
		l.metrics.LocationLookups.WithLabelValues("error").Inc()
		return domain.GeoCoordinate{}, &domain.LocationUnavailableError{Err: ctx.Err()}
	}
}

// Start runs the first load. Later calls are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.mu.Lock()
	rev := l.revision
	l.mu.Unlock()
	l.fetcher.Activate(ctx, rev)
}

// Reload fetches the catalog again regardless of what is cached.
func (l *Loader) Reload(ctx context.Context) {
	l.mu.Lock()
	l.revision++
	rev := l.revision
	l.mu.Unlock()
	l.fetcher.Activate(ctx, rev)
}

// State returns the catalog's fetch state.
func (l *Loader) State() fetch.State[[]domain.Place] {
	return l.fetcher.State()
}

// Wait blocks until the latest load settles.
func (l *Loader) Wait(ctx context.Context) (fetch.State[[]domain.Place], error) {
	return l.fetcher.Wait(ctx)
}

// Lookup finds a loaded catalog place by ID.
func (l *Loader) Lookup(id string) (domain.Place, bool) {
	for _, p := range l.fetcher.State().Data {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Place{}, false
}

// CheckReadiness reports whether the catalog has loaded.
func (l *Loader) CheckReadiness(_ context.Context) error {
	state := l.fetcher.State()
	if state.Err != nil {
		return state.Err
	}
	if !state.Loaded {
		return ErrNotLoaded
	}
	return nil
}
