package fleet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/rileyhilliard/fleetdash/internal/logger"
)

// API is the subset of the manager client the store needs.
// *fleetapi.Client satisfies it; tests use fleetapi/testing.FakeAPI.
type API interface {
	ListWorkers(ctx context.Context) ([]fleetapi.Worker, error)
	SpawnWorker(ctx context.Context) error
	TerminateWorker(ctx context.Context, id fleetapi.WorkerID) error
}

// Confirmer decides whether a destructive command may proceed.
// Confirm blocks until the user answers or ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, id fleetapi.WorkerID) (bool, error)
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(ctx context.Context, id fleetapi.WorkerID) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, id fleetapi.WorkerID) (bool, error) {
	return f(ctx, id)
}

// AlwaysConfirm approves every request. Used for --yes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, fleetapi.WorkerID) (bool, error) {
	return true, nil
})

// State is a point-in-time copy of the store.
type State struct {
	// Workers is the latest snapshot in server order.
	Workers []fleetapi.Worker
	// Ready is false until the first successful refresh.
	Ready bool
	// Spawning is true while a spawn request is in flight.
	Spawning bool
	// UpdatedAt is when the snapshot was last replaced.
	UpdatedAt time.Time
}

// Aggregates derives the fleet figures for this state.
func (s State) Aggregates() Aggregates {
	return ComputeAggregates(s.Workers)
}

// Observer is notified with a fresh copy after every state change.
// Observers run on the goroutine that made the change and must not block.
type Observer func(State)

// Store caches the fleet snapshot and mediates every command.
type Store struct {
	api       API
	log       logger.Logger
	now       func() time.Time
	observers []Observer

	mu    sync.Mutex
	state State
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets where refresh failures are reported.
func WithLogger(l logger.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// WithObserver registers a change callback.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithClock overrides time.Now for UpdatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty, not-yet-ready store.
func NewStore(api API, opts ...StoreOption) *Store {
	s := &Store{
		api: api,
		log: logger.NewEnvLogger("store"),
		now: time.Now,
		state: State{
			Workers: []fleetapi.Worker{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Workers = make([]fleetapi.Worker, len(s.state.Workers))
	copy(st.Workers, s.state.Workers)
	return st
}

func (s *Store) notify(st State) {
	for _, o := range s.observers {
		o(st)
	}
}

// Refresh fetches the worker list and replaces the snapshot.
// Failures leave the previous snapshot in place and are logged, never returned.
func (s *Store) Refresh(ctx context.Context) {
	workers, err := s.api.ListWorkers(ctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		s.log.Error("Error fetching workers: %v", err)
		return
	}
	if workers == nil {
		workers = []fleetapi.Worker{}
	}

	s.mu.Lock()
	s.state.Workers = workers
	s.state.Ready = true
	s.state.UpdatedAt = s.now()
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("refreshed %d workers", len(workers))
	s.notify(st)
}

// Spawn asks the manager for a new worker, then refreshes.
// It returns started=false without any request when a spawn is already in
// flight. Otherwise the returned error is the spawn failure, if any; the
// refresh runs and the guard is released either way.
func (s *Store) Spawn(ctx context.Context) (started bool, err error) {
	s.mu.Lock()
	if s.state.Spawning {
		s.mu.Unlock()
		s.log.Debug("spawn already in flight, ignoring")
		return false, nil
	}
	s.state.Spawning = true
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)

	defer func() {
		s.mu.Lock()
		s.state.Spawning = false
		st := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(st)
	}()

	err = s.api.SpawnWorker(ctx)
	if err != nil {
		s.log.Warn("spawn failed: %v", err)
	}
	s.Refresh(ctx)
	return true, err
}

// Terminate asks confirmer, and on approval deletes the worker and refreshes.
// Declining, or a confirmer error, returns before any request is made.
func (s *Store) Terminate(ctx context.Context, id fleetapi.WorkerID, confirmer Confirmer) (confirmed bool, err error) {
	if confirmer == nil {
		confirmer = AlwaysConfirm
	}

	ok, err := confirmer.Confirm(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Debug("terminate %s declined", id)
		return false, nil
	}

	err = s.api.TerminateWorker(ctx, id)
	if err != nil {
		s.log.Warn("terminate %s failed: %v", id, err)
	}
	s.Refresh(ctx)
	return true, err
}
