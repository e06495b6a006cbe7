package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
	"github.com/stretchr/testify/assert"
)

func TestCommandNotice(t *testing.T) {
	tests := []struct {
		name   string
		action string
		err    error
		expect string
	}{
		{
			name:   "no error",
			action: "spawn worker",
			err:    nil,
			expect: "",
		},
		{
			name:   "server detail",
			action: "spawn worker",
			err:    &fleetapi.CommandError{Op: fleetapi.OpSpawn, StatusCode: 500, Detail: "Worker worker-3 failed to register within timeout"},
			expect: "Failed to spawn worker: Worker worker-3 failed to register within timeout",
		},
		{
			name:   "status without detail",
			action: "terminate worker",
			err:    &fleetapi.CommandError{Op: fleetapi.OpTerminate, StatusCode: 502},
			expect: "Failed to terminate worker: request failed with status code 502",
		},
		{
			name:   "network failure",
			action: "spawn worker",
			err:    &fleetapi.CommandError{Op: fleetapi.OpSpawn, Cause: errors.New("dial tcp: connection refused")},
			expect: "Failed to spawn worker: dial tcp: connection refused",
		},
		{
			name:   "wrapped command error",
			action: "terminate worker",
			err:    fmt.Errorf("wrapped: %w", &fleetapi.CommandError{Op: fleetapi.OpTerminate, StatusCode: 404, Detail: "Worker not found"}),
			expect: "Failed to terminate worker: Worker not found",
		},
		{
			name:   "plain error",
			action: "spawn worker",
			err:    errors.New("boom"),
			expect: "Failed to spawn worker: boom",
		},
		{
			name:   "cancelled during shutdown",
			action: "spawn worker",
			err:    context.Canceled,
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, commandNotice(tt.action, tt.err))
		})
	}
}

func TestClockTickCmd(t *testing.T) {
	assert.NotNil(t, clockTickCmd())
}
