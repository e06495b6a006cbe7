// Package testing provides test doubles for the fleetapi package.
package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// FakeAPI simulates the fleet manager for store, poller and dashboard tests.
// It succeeds by default and returns whatever Workers currently holds.
type FakeAPI struct {
	mu sync.Mutex

	// Configuration
	Workers      []fleetapi.Worker
	ListErr      error
	SpawnErr     error
	TerminateErr error
	ParseErr     error
	ParseResult  *fleetapi.ParseResponse

	// SpawnGate, when set, blocks SpawnWorker until it is closed or
	// receives a value. Tests use it to hold a spawn in flight.
	SpawnGate chan struct{}

	// OnSpawn runs after a successful spawn, under no lock. Handy for
	// growing Workers so the follow-up refresh sees the new worker.
	OnSpawn func()

	// Call tracking
	ListCalls      int
	SpawnCalls     int
	TerminateCalls []fleetapi.WorkerID
	ParseCalls     []fleetapi.ParseRequest

	// Calls records every operation in order ("list", "spawn", "terminate").
	Calls []string

	spawnStarted chan struct{}
}

// NewFakeAPI creates a fake that reports the given workers.
func NewFakeAPI(workers ...fleetapi.Worker) *FakeAPI {
	return &FakeAPI{
		Workers:      workers,
		spawnStarted: make(chan struct{}, 16),
	}
}

// ListWorkers returns a copy of Workers, or ListErr.
func (f *FakeAPI) ListWorkers(ctx context.Context) ([]fleetapi.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListCalls++
	f.Calls = append(f.Calls, "list")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]fleetapi.Worker, len(f.Workers))
	copy(out, f.Workers)
	return out, nil
}

// SpawnWorker records the call and returns SpawnErr, blocking on SpawnGate if set.
func (f *FakeAPI) SpawnWorker(ctx context.Context) error {
	f.mu.Lock()
	f.SpawnCalls++
	f.Calls = append(f.Calls, "spawn")
	gate := f.SpawnGate
	err := f.SpawnErr
	hook := f.OnSpawn
	f.mu.Unlock()

	select {
	case f.spawnStarted <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err == nil && hook != nil {
		hook()
	}
	return err
}

// SpawnStarted returns a channel that receives once per SpawnWorker call,
// before the call blocks on SpawnGate.
func (f *FakeAPI) SpawnStarted() <-chan struct{} {
	return f.spawnStarted
}

// TerminateWorker records the id and returns TerminateErr.
func (f *FakeAPI) TerminateWorker(ctx context.Context, id fleetapi.WorkerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.TerminateCalls = append(f.TerminateCalls, id)
	f.Calls = append(f.Calls, "terminate")
	if f.TerminateErr != nil {
		return f.TerminateErr
	}

	// Mirror the manager: the worker disappears from the next listing.
	kept := f.Workers[:0:0]
	for _, w := range f.Workers {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	f.Workers = kept
	return nil
}

// Parse records the request and returns ParseResult or ParseErr.
func (f *FakeAPI) Parse(ctx context.Context, req fleetapi.ParseRequest) (*fleetapi.ParseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ParseCalls = append(f.ParseCalls, req)
	f.Calls = append(f.Calls, "parse")
	if f.ParseErr != nil {
		return nil, f.ParseErr
	}
	if f.ParseResult != nil {
		return f.ParseResult, nil
	}
	return &fleetapi.ParseResponse{Status: 200}, nil
}

// SetWorkers replaces the reported fleet.
func (f *FakeAPI) SetWorkers(workers ...fleetapi.Worker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Workers = workers
}

// SetListErr changes the error returned by ListWorkers.
func (f *FakeAPI) SetListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListErr = err
}

// SetSpawnErr changes the error returned by SpawnWorker.
func (f *FakeAPI) SetSpawnErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SpawnErr = err
}

// Snapshot returns the call counters under the lock.
func (f *FakeAPI) Snapshot() (lists, spawns, terminates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ListCalls, f.SpawnCalls, len(f.TerminateCalls)
}

// CallLog returns a copy of the ordered call log.
func (f *FakeAPI) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}
