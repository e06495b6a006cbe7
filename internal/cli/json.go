package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/fleetdash/internal/errors"
	"github.com/rileyhilliard/fleetdash/internal/fleetapi"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound  = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeAPIUnreachable  = "API_UNREACHABLE"
	ErrCodeInvalidResponse = "INVALID_RESPONSE"
	ErrCodeCommandRejected = "COMMAND_REJECTED"
	ErrCodeWorkerNotFound  = "WORKER_NOT_FOUND"
	ErrCodeNotConfirmed    = "NOT_CONFIRMED"
	ErrCodeUnknown         = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var fdErr *errors.Error
	if stderrors.As(err, &fdErr) {
		return &JSONError{
			Code:       mapErrorCode(fdErr),
			Message:    fdErr.Message,
			Suggestion: fdErr.Suggestion,
			Details:    apiDetails(err),
		}
	}

	// Raw API errors that were never translated
	if details := apiDetails(err); details != nil {
		return &JSONError{
			Code:    mapErrorCode(&errors.Error{Code: errors.ErrTransport, Cause: err}),
			Message: err.Error(),
			Details: details,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(e *errors.Error) string {
	var cmdErr *fleetapi.CommandError
	if stderrors.As(e, &cmdErr) {
		if cmdErr.StatusCode == 404 {
			return ErrCodeWorkerNotFound
		}
		return ErrCodeCommandRejected
	}
	var protoErr *fleetapi.ProtocolError
	if stderrors.As(e, &protoErr) {
		return ErrCodeInvalidResponse
	}

	switch e.Code {
	case errors.ErrConfig:
		msgLower := strings.ToLower(e.Message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrTransport:
		return ErrCodeAPIUnreachable
	case errors.ErrProtocol:
		return ErrCodeInvalidResponse
	case errors.ErrCommand:
		return ErrCodeCommandRejected
	case errors.ErrExec:
		if strings.Contains(strings.ToLower(e.Message), "confirm") {
			return ErrCodeNotConfirmed
		}
	}

	return ErrCodeUnknown
}

// apiDetails extracts the HTTP status and operation from a fleet API error.
func apiDetails(err error) map[string]interface{} {
	var cmdErr *fleetapi.CommandError
	if stderrors.As(err, &cmdErr) {
		d := map[string]interface{}{"operation": cmdErr.Op}
		if cmdErr.StatusCode != 0 {
			d["status"] = cmdErr.StatusCode
		}
		if cmdErr.Detail != "" {
			d["detail"] = cmdErr.Detail
		}
		return d
	}

	var transportErr *fleetapi.TransportError
	if stderrors.As(err, &transportErr) {
		d := map[string]interface{}{"operation": transportErr.Op}
		if transportErr.StatusCode != 0 {
			d["status"] = transportErr.StatusCode
		}
		return d
	}

	var protoErr *fleetapi.ProtocolError
	if stderrors.As(err, &protoErr) {
		return map[string]interface{}{"operation": protoErr.Op}
	}
	return nil
}
