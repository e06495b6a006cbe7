package fleet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	fleettesting "github.com/rileyhilliard/fleetdash/internal/fleetapi/testing"
	"github.com/rileyhilliard/fleetdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(api API, opts ...StoreOption) *Store {
	return NewStore(api, append([]StoreOption{WithLogger(logger.Noop())}, opts...)...)
}

func declineAll() Confirmer {
	return ConfirmFunc(func(context.Context, fleetapi.WorkerID) (bool, error) { return false, nil })
}

func TestNewStore_InitialState(t *testing.T) {
	s := newTestStore(fleettesting.NewFakeAPI())
	st := s.State()

	assert.False(t, st.Ready)
	assert.False(t, st.Spawning)
	assert.NotNil(t, st.Workers)
	assert.Empty(t, st.Workers)
	assert.True(t, st.UpdatedAt.IsZero())
}

func TestStore_Refresh(t *testing.T) {
	fixed := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	api := fleettesting.NewFakeAPI(
		worker("1", fleetapi.StatusOK, 40, 60),
		worker("2", fleetapi.StatusError, 90, 95),
	)
	s := newTestStore(api, WithClock(func() time.Time { return fixed }))

	s.Refresh(context.Background())

	st := s.State()
	assert.True(t, st.Ready)
	assert.Equal(t, fixed, st.UpdatedAt)
	require.Len(t, st.Workers, 2)
	assert.Equal(t, fleetapi.WorkerID("1"), st.Workers[0].ID)
	assert.Equal(t, fleetapi.WorkerID("2"), st.Workers[1].ID)

	agg := st.Aggregates()
	assert.Equal(t, 1, agg.ActiveWorkers)
	assert.InDelta(t, 65.0, agg.AverageCPU, 1e-9)
	assert.InDelta(t, 77.5, agg.AverageMemory, 1e-9)
}

func TestStore_RefreshReplacesWholesale(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("a", fleetapi.StatusOK, 1, 1), worker("b", fleetapi.StatusOK, 1, 1))
	s := newTestStore(api)
	s.Refresh(context.Background())

	api.SetWorkers(worker("c", fleetapi.StatusNotOK, 5, 5))
	s.Refresh(context.Background())

	st := s.State()
	require.Len(t, st.Workers, 1)
	assert.Equal(t, fleetapi.WorkerID("c"), st.Workers[0].ID)

	api.SetWorkers()
	s.Refresh(context.Background())
	assert.Empty(t, s.State().Workers)
	assert.True(t, s.State().Ready)
}

func TestStore_RefreshFailureKeepsSnapshot(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("1", fleetapi.StatusOK, 10, 10))
	logs := logger.NewBufferLogger()
	s := NewStore(api, WithLogger(logs))

	s.Refresh(context.Background())
	before := s.State()

	api.SetListErr(&fleetapi.TransportError{Op: fleetapi.OpList, Cause: errors.New("connection refused")})
	s.Refresh(context.Background())

	after := s.State()
	assert.Equal(t, before.Workers, after.Workers)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.True(t, after.Ready)

	require.True(t, logs.HasLevel("error"))
	msgs := logs.Snapshot()
	assert.Contains(t, msgs[len(msgs)-1].Message, "Error fetching workers")
	assert.Contains(t, msgs[len(msgs)-1].Message, "connection refused")
}

func TestStore_RefreshFailureBeforeFirstSuccess(t *testing.T) {
	api := fleettesting.NewFakeAPI()
	api.SetListErr(errors.New("boom"))
	s := newTestStore(api)

	s.Refresh(context.Background())

	assert.False(t, s.State().Ready)
	assert.Empty(t, s.State().Workers)
}

func TestStore_RefreshCancelledIsNotLogged(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("1", fleetapi.StatusOK, 10, 10))
	logs := logger.NewBufferLogger()
	s := NewStore(api, WithLogger(logs))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Refresh(ctx)

	assert.False(t, logs.HasLevel("error"))
	assert.False(t, s.State().Ready)
}

func TestStore_ObserverSeesCopies(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("1", fleetapi.StatusOK, 10, 10))

	var seen []State
	s := newTestStore(api, WithObserver(func(st State) { seen = append(seen, st) }))
	s.Refresh(context.Background())

	require.Len(t, seen, 1)
	seen[0].Workers[0].CPUUsage = 99

	assert.InDelta(t, 10.0, s.State().Workers[0].CPUUsage, 1e-9)
}

func TestStore_Spawn(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("1", fleetapi.StatusOK, 10, 10))
	api.OnSpawn = func() {
		api.SetWorkers(worker("1", fleetapi.StatusOK, 10, 10), worker("2", fleetapi.StatusUnknown, 0, 0))
	}

	var mu sync.Mutex
	var spawning []bool
	s := newTestStore(api, WithObserver(func(st State) {
		mu.Lock()
		spawning = append(spawning, st.Spawning)
		mu.Unlock()
	}))

	started, err := s.Spawn(context.Background())
	require.NoError(t, err)
	assert.True(t, started)

	assert.Equal(t, []string{"spawn", "list"}, api.CallLog())
	assert.Len(t, s.State().Workers, 2)
	assert.False(t, s.State().Spawning)

	// busy, refreshed (still busy), idle
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, true, false}, spawning)
}

func TestStore_SpawnWhileInFlightIsNoop(t *testing.T) {
	api := fleettesting.NewFakeAPI()
	api.SpawnGate = make(chan struct{})
	s := newTestStore(api)

	type result struct {
		started bool
		err     error
	}
	first := make(chan result, 1)
	go func() {
		started, err := s.Spawn(context.Background())
		first <- result{started, err}
	}()

	select {
	case <-api.SpawnStarted():
	case <-time.After(2 * time.Second):
		t.Fatal("first spawn never reached the API")
	}
	assert.True(t, s.State().Spawning)

	started, err := s.Spawn(context.Background())
	assert.NoError(t, err)
	assert.False(t, started)

	close(api.SpawnGate)
	r := <-first
	assert.True(t, r.started)
	assert.NoError(t, r.err)

	_, spawns, _ := api.Snapshot()
	assert.Equal(t, 1, spawns, "second spawn must not reach the API")
	assert.False(t, s.State().Spawning)
}

func TestStore_SpawnFailureReleasesGuard(t *testing.T) {
	api := fleettesting.NewFakeAPI()
	spawnErr := &fleetapi.CommandError{Op: fleetapi.OpSpawn, StatusCode: 500, Detail: "Worker worker-3 failed to start"}
	api.SetSpawnErr(spawnErr)
	s := newTestStore(api)

	started, err := s.Spawn(context.Background())
	assert.True(t, started)
	require.Error(t, err)

	var cmdErr *fleetapi.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "Worker worker-3 failed to start", cmdErr.Message())

	// Refresh still runs after a failed spawn
	assert.Equal(t, []string{"spawn", "list"}, api.CallLog())
	assert.False(t, s.State().Spawning)

	api.SetSpawnErr(nil)
	started, err = s.Spawn(context.Background())
	assert.True(t, started)
	assert.NoError(t, err)

	_, spawns, _ := api.Snapshot()
	assert.Equal(t, 2, spawns)
}

func TestStore_SpawnCancelledReleasesGuard(t *testing.T) {
	api := fleettesting.NewFakeAPI()
	api.SpawnGate = make(chan struct{})
	s := newTestStore(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Spawn(ctx)
		done <- err
	}()

	<-api.SpawnStarted()
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.State().Spawning)
}

func TestStore_TerminateDeclined(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("7", fleetapi.StatusOK, 1, 1))
	s := newTestStore(api)

	confirmed, err := s.Terminate(context.Background(), "7", declineAll())
	assert.NoError(t, err)
	assert.False(t, confirmed)
	assert.Empty(t, api.CallLog())
}

func TestStore_TerminateConfirmed(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("7", fleetapi.StatusOK, 1, 1), worker("8", fleetapi.StatusOK, 1, 1))
	s := newTestStore(api)

	var asked fleetapi.WorkerID
	confirmer := ConfirmFunc(func(_ context.Context, id fleetapi.WorkerID) (bool, error) {
		asked = id
		return true, nil
	})

	confirmed, err := s.Terminate(context.Background(), "7", confirmer)
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, fleetapi.WorkerID("7"), asked)

	assert.Equal(t, []string{"terminate", "list"}, api.CallLog())
	assert.Equal(t, []fleetapi.WorkerID{"7"}, api.TerminateCalls)

	st := s.State()
	require.Len(t, st.Workers, 1)
	assert.Equal(t, fleetapi.WorkerID("8"), st.Workers[0].ID)
}

func TestStore_TerminateFailureStillRefreshes(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("7", fleetapi.StatusOK, 1, 1))
	api.TerminateErr = &fleetapi.CommandError{Op: fleetapi.OpTerminate, StatusCode: 404, Detail: "Worker not found"}
	s := newTestStore(api)

	confirmed, err := s.Terminate(context.Background(), "7", AlwaysConfirm)
	assert.True(t, confirmed)
	require.Error(t, err)
	assert.Equal(t, "terminate worker: Worker not found", err.Error())
	assert.Equal(t, []string{"terminate", "list"}, api.CallLog())
}

func TestStore_TerminateConfirmerError(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("7", fleetapi.StatusOK, 1, 1))
	s := newTestStore(api)

	boom := errors.New("prompt closed")
	confirmed, err := s.Terminate(context.Background(), "7", ConfirmFunc(func(context.Context, fleetapi.WorkerID) (bool, error) {
		return false, boom
	}))

	assert.False(t, confirmed)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, api.CallLog())
}

func TestStore_TerminateNilConfirmerApproves(t *testing.T) {
	api := fleettesting.NewFakeAPI(worker("7", fleetapi.StatusOK, 1, 1))
	s := newTestStore(api)

	confirmed, err := s.Terminate(context.Background(), "7", nil)
	assert.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, []fleetapi.WorkerID{"7"}, api.TerminateCalls)
}

func TestStore_ConcurrentSpawnsSendOnePost(t *testing.T) {
	api := fleettesting.NewFakeAPI()
	api.SpawnGate = make(chan struct{})
	s := newTestStore(api)

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	startedCount := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started, _ := s.Spawn(context.Background())
			if started {
				mu.Lock()
				startedCount++
				mu.Unlock()
			}
		}()
	}

	<-api.SpawnStarted()
	// Give the rest a chance to hit the guard before releasing the first.
	assert.Eventually(t, func() bool { return s.State().Spawning }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(api.SpawnGate)
	wg.Wait()

	_, spawns, _ := api.Snapshot()
	assert.Equal(t, startedCount, spawns)
	assert.GreaterOrEqual(t, spawns, 1)
	assert.False(t, s.State().Spawning)
}
