// Package fleet holds the client-side model of the worker fleet.
//
// The Store caches the latest worker snapshot fetched from the manager and
// is the only path through which workers are spawned or terminated. The
// Poller keeps the snapshot fresh on a fixed interval for as long as the
// dashboard is open.
//
// # Refresh Cycle
//
//  1. Poller.Start refreshes immediately, then on every tick
//  2. Store.Refresh lists workers and replaces the snapshot wholesale
//  3. Observers receive a copy of the new State (the TUI re-renders)
//
// A failed refresh keeps the previous snapshot and is only logged. The
// next tick tries again; there is no backoff.
//
// # Commands
//
// Spawn and Terminate always refresh after the mutating request returns,
// whether it succeeded or not, so the view converges on what the manager
// actually did. Spawn is guarded: while one spawn is in flight further
// calls return immediately without touching the network.
//
// Poll and command refreshes are not ordered against each other. Whichever
// response lands last wins.
package fleet
