package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// Error codes for categorizing errors
const (
	ErrConfig    = "CONFIG"
	ErrTransport = "TRANSPORT"
	ErrProtocol  = "PROTOCOL"
	ErrCommand   = "COMMAND"
	ErrExec      = "EXEC"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrTransport code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrTransport,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// FromAPI translates a fleet API error into a user-facing structured error.
// action is the verb phrase shown to the user, e.g. "spawn worker".
func FromAPI(err error, action string) error {
	if err == nil {
		return nil
	}

	var cmdErr *fleetapi.CommandError
	if errors.As(err, &cmdErr) {
		// The detail is the backend's own explanation, so it is the message.
		return &Error{
			Code:       ErrCommand,
			Message:    fmt.Sprintf("Failed to %s: %s", action, cmdErr.Message()),
			Suggestion: commandSuggestion(cmdErr.StatusCode),
			Cause:      err,
		}
	}

	var protoErr *fleetapi.ProtocolError
	if errors.As(err, &protoErr) {
		return WrapWithCode(err, ErrProtocol,
			fmt.Sprintf("Failed to %s: unexpected response from the fleet API", action),
			"Check that --api-url points at the fleet manager and not some other service.")
	}

	var transportErr *fleetapi.TransportError
	if errors.As(err, &transportErr) {
		return WrapWithCode(err, ErrTransport,
			fmt.Sprintf("Failed to %s: fleet API unreachable", action),
			"Check the manager is running and --api-url (or api.url in .fleetdash.yaml) is right.")
	}

	return Wrap(err, fmt.Sprintf("Failed to %s", action))
}

func commandSuggestion(status int) string {
	switch {
	case status == 404:
		return "The worker may already be gone. Run 'fleetdash workers' to see the current fleet."
	case status == 503:
		return "No healthy workers are available. Spawn one with 'fleetdash spawn'."
	case status >= 500:
		return "The manager rejected the command. Its logs should have the details."
	default:
		return ""
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if cause := causeText(e.Cause); cause != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", cause))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// causeText returns the "why" line for a cause. A CommandError's detail is
// already in the message, so only its transport cause is shown.
func causeText(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *fleetapi.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Cause == nil || cmdErr.Message() == cmdErr.Cause.Error() {
			return ""
		}
		return cmdErr.Cause.Error()
	}
	return err.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var fdErr *Error
	if errors.As(err, &fdErr) {
		return fdErr.Code == code
	}
	return false
}
