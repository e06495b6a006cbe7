package monitor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// ConfirmRequest is a pending terminate question waiting on the user.
type ConfirmRequest struct {
	WorkerID fleetapi.WorkerID
	reply    chan bool
}

// Prompt is the question shown to the user.
func (r *ConfirmRequest) Prompt() string {
	return fmt.Sprintf("Are you sure you want to terminate worker %s? (y/n)", r.WorkerID)
}

// Answer delivers the user's decision. Only the first answer counts.
func (r *ConfirmRequest) Answer(ok bool) {
	select {
	case r.reply <- ok:
	default:
	}
}

// PromptConfirmer suspends Store.Terminate until the dashboard answers.
// Confirm hands a ConfirmRequest to whoever reads Requests (the TUI model)
// and blocks until it is answered or ctx ends.
type PromptConfirmer struct {
	requests chan *ConfirmRequest
}

// NewPromptConfirmer creates a confirmer with no reader attached yet.
func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{requests: make(chan *ConfirmRequest)}
}

// Requests returns the channel the UI reads questions from.
func (p *PromptConfirmer) Requests() <-chan *ConfirmRequest {
	return p.requests
}

// Confirm implements fleet.Confirmer.
func (p *PromptConfirmer) Confirm(ctx context.Context, id fleetapi.WorkerID) (bool, error) {
	req := &ConfirmRequest{WorkerID: id, reply: make(chan bool, 1)}

	select {
	case p.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
