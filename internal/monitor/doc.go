// Package monitor implements the full-screen fleet dashboard.
//
// The dashboard shows fleet-wide aggregates and a table of workers with
// color-coded status, CPU and memory, and lets the user spawn and
// terminate workers.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the last published fleet.State, the selection and any modal
//   - Update: Processes keystrokes, state updates and command results
//   - View: Renders the current state to a string for display
//
// The model never fetches on its own. A fleet.Poller refreshes the
// fleet.Store, and the store's observer forwards each new state into the
// program as a StateMsg.
//
// # Commands
//
//  1. s spawns a worker. The action is disabled while a spawn is in flight.
//  2. x terminates the selected worker after a y/n confirmation.
//  3. A failed command shows a notice that must be dismissed with enter.
//
// Terminate confirmation is a real suspension point: Store.Terminate blocks
// inside PromptConfirmer.Confirm, which hands a ConfirmRequest to the model.
// The model shows the question and answers the request when the user
// presses y or n.
//
// # Presentation
//
// present.go holds the pure mapping from wire values to what is shown:
// status badges, usage colors and timestamp formatting.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Force refresh
//	s           - Spawn worker
//	x           - Terminate selected worker
//	j/k, ↑/↓    - Navigate worker list
//	?           - Toggle help overlay
package monitor
