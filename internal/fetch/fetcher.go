// Package fetch holds the lifecycle state of an asynchronous load: whether it
// is in progress, the last error, and the last successfully produced value.
//
// A Fetcher runs its producer once per distinct dependency set passed to
// Activate. Callers may mutate the cached value with Set or Update without
// running the producer again, which is how optimistic updates are applied.
package fetch

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/couchcryptid/place-picker/internal/domain"
)

// DefaultErrorMessage is used when a producer fails with an empty message.
const DefaultErrorMessage = "Failed to fetch data."

// Producer loads a value.
type Producer[T any] func(ctx context.Context) (T, error)

// Outcome labels passed to an Observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
)

// Observer is notified each time a producer invocation settles.
type Observer func(outcome string)

// Error is the failure recorded in State after a producer fails.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// State is a snapshot of a Fetcher.
type State[T any] struct {
	IsFetching bool
	Err        *Error
	Data       T
	// Loaded is true once any value has been stored, by the producer or by Set/Update.
	Loaded bool
}

// Fetcher wraps a producer with loading, error and data state.
type Fetcher[T any] struct {
	producer   Producer[T]
	defaultMsg string
	logger     *slog.Logger
	observer   Observer

	mu         sync.Mutex
	activated  bool
	deps       []any
	generation uint64
	done       chan struct{}
	state      State[T]
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	defaultMsg string
	logger     *slog.Logger
	observer   Observer
}

// WithDefaultMessage overrides the message recorded when a failure has none.
func WithDefaultMessage(msg string) Option {
	return func(o *options) { o.defaultMsg = msg }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver registers a callback for settled invocations.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New creates an inactive Fetcher. Nothing runs until Activate is called.
func New[T any](producer Producer[T], opts ...Option) *Fetcher[T] {
	o := options{
		defaultMsg: DefaultErrorMessage,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan struct{})
	close(done)

	return &Fetcher[T]{
		producer:   producer,
		defaultMsg: o.defaultMsg,
		logger:     o.logger,
		observer:   o.observer,
		done:       done,
	}
}

// Activate starts one producer invocation if this is the first activation or
// deps differ from the previous call. It returns false when nothing was started.
// The invocation runs in its own goroutine using ctx.
func (f *Fetcher[T]) Activate(ctx context.Context, deps ...any) bool {
	f.mu.Lock()
	if f.activated && reflect.DeepEqual(f.deps, deps) {
		f.mu.Unlock()
		return false
	}
	f.activated = true
	f.deps = append([]any(nil), deps...)
	f.generation++
	gen := f.generation
	done := make(chan struct{})
	f.done = done
	f.state.IsFetching = true
	f.mu.Unlock()

	go f.run(ctx, gen, done)
	return true
}

func (f *Fetcher[T]) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	data, err := f.producer(ctx)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.logger.Debug("dropping stale fetch result", "generation", gen)
		f.notify(OutcomeStale)
		return
	}
	f.state.IsFetching = false
	if err != nil {
		f.state.Err = &Error{Message: domain.MessageOr(err, f.defaultMsg), Err: err}
	} else {
		f.state.Err = nil
		f.state.Data = data
		f.state.Loaded = true
	}
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("fetch failed", "error", err)
		f.notify(OutcomeError)
		return
	}
	f.notify(OutcomeSuccess)
}

func (f *Fetcher[T]) notify(outcome string) {
	if f.observer != nil {
		f.observer(outcome)
	}
}

// State returns a snapshot of the current state.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Set replaces the cached data without invoking the producer.
func (f *Fetcher[T]) Set(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Data = v
	f.state.Loaded = true
}

// Update replaces the cached data with fn applied to the current value. fn runs
// under the Fetcher's lock and must not call back into the Fetcher.
func (f *Fetcher[T]) Update(fn func(prev T) T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Data = fn(f.state.Data)
	f.state.Loaded = true
}

// Wait blocks until the most recent invocation settles or ctx is done. It
// returns immediately if nothing is in flight.
func (f *Fetcher[T]) Wait(ctx context.Context) (State[T], error) {
	for {
		f.mu.Lock()
		done := f.done
		gen := f.generation
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return f.State(), ctx.Err()
		case <-done:
		}

		f.mu.Lock()
		settled := gen == f.generation
		state := f.state
		f.mu.Unlock()
		if settled {
			return state, nil
		}
	}
}
