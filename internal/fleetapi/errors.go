package fleetapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operation names used in error messages.
const (
	OpList      = "list workers"
	OpSpawn     = "spawn worker"
	OpTerminate = "terminate worker"
	OpParse     = "parse"
)

// TransportError reports that the manager could not be reached or answered
// a read with a non-2xx status.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 && e.Cause == nil {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ProtocolError reports a response whose body does not have the expected shape.
type ProtocolError struct {
	Op    string
	Cause error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Cause)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// CommandError reports that a mutating command (spawn, terminate, parse)
// failed. Detail carries the manager's human-readable reason when it sent one.
type CommandError struct {
	Op         string
	StatusCode int
	Detail     string
	Cause      error
}

// Message returns the text to show a user: the server detail when present,
// otherwise a generic transport message.
func (e *CommandError) Message() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.StatusCode != 0:
		return fmt.Sprintf("request failed with status code %d", e.StatusCode)
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return "request failed"
	}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message())
}

func (e *CommandError) Unwrap() error { return e.Cause }

// extractDetail pulls the "detail" field out of an error body.
// Validation failures send a list of objects; those are returned as compact JSON.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	raw := bytes.TrimSpace(payload.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// errorBody returns a short excerpt of a non-2xx body for diagnostics.
func errorBody(body []byte) string {
	if detail := extractDetail(body); detail != "" {
		return detail
	}
	const max = 200
	text := string(bytes.TrimSpace(body))
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
