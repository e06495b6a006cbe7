package fleetapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// StatusCode is a worker health code as reported by the manager.
type StatusCode int

const (
	StatusOK      StatusCode = 0
	StatusNotOK   StatusCode = 1
	StatusUnknown StatusCode = 2
	StatusError   StatusCode = 3
)

// statusNames maps the names the manager may send instead of a code.
// A freshly registered worker is reported as "UNKNOWN" until its first
// status report arrives.
var statusNames = map[string]StatusCode{
	"OK":      StatusOK,
	"NOT_OK":  StatusNotOK,
	"NOT OK":  StatusNotOK,
	"UNKNOWN": StatusUnknown,
	"ERROR":   StatusError,
}

// UnmarshalJSON accepts a numeric code or a status name.
// Numbers keep their raw value, even out-of-range ones; anything that is
// neither an integer nor a known name decodes as StatusUnknown.
func (s *StatusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if code, ok := statusNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
			*s = code
		} else {
			*s = StatusUnknown
		}
		return nil
	}

	if bytes.Equal(data, []byte("null")) {
		*s = StatusUnknown
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil || f != math.Trunc(f) {
		// booleans, objects, fractional codes
		*s = StatusUnknown
		return nil
	}
	*s = StatusCode(int(f))
	return nil
}

// WorkerID is an opaque worker identifier. The manager uses strings like
// "worker-0", but numeric ids are accepted too.
type WorkerID string

// UnmarshalJSON accepts a JSON string or number.
func (id *WorkerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = WorkerID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = WorkerID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id WorkerID) String() string {
	return string(id)
}

// Worker is a single entry of the manager's /workers response.
type Worker struct {
	ID          WorkerID   `json:"id"`
	Host        string     `json:"host,omitempty"`
	Port        int        `json:"port,omitempty"`
	Status      StatusCode `json:"status"`
	LastReport  string     `json:"last_report,omitempty"`
	ActivePages int        `json:"active_pages"`
	CPUUsage    float64    `json:"cpu_usage"`
	MemoryUsage float64    `json:"memory_usage"`

	// Extra holds any other fields the manager sent, untouched.
	Extra map[string]json.RawMessage `json:"-"`
}

var workerFields = []string{
	"id", "host", "port", "status", "last_report", "active_pages", "cpu_usage", "memory_usage",
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (w *Worker) UnmarshalJSON(data []byte) error {
	type wire Worker

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("worker entry is null")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// A worker that reports no status is not known to be healthy.
	known := wire{Status: StatusUnknown}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*w = Worker(known)

	for _, field := range workerFields {
		delete(raw, field)
	}
	if len(raw) > 0 {
		w.Extra = raw
	}
	return nil
}

// MarshalJSON re-emits the worker including its pass-through fields.
func (w Worker) MarshalJSON() ([]byte, error) {
	type wire Worker

	base, err := json.Marshal(wire(w))
	if err != nil || len(w.Extra) == 0 {
		return base, err
	}

	merged := make(map[string]json.RawMessage, len(w.Extra)+len(workerFields))
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range w.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// workersResponse is the wire format for GET /workers.
// Workers is a pointer so a missing field can be told apart from an empty list.
type workersResponse struct {
	Workers *[]Worker `json:"workers"`
}

// ActionArgument is a named argument passed to a page action.
// Exactly one of the value fields should be set.
type ActionArgument struct {
	Name        string   `json:"name"`
	IntValue    *int64   `json:"int_value,omitempty"`
	StringValue *string  `json:"string_value,omitempty"`
	DoubleValue *float64 `json:"double_value,omitempty"`
}

// Action is a page method the worker runs after navigation, e.g. "click".
type Action struct {
	Func string           `json:"func"`
	Args []ActionArgument `json:"args,omitempty"`
}

// ParseRequest is the wire format for POST /parse.
type ParseRequest struct {
	URL     string            `json:"url"`
	Proxy   string            `json:"proxy,omitempty"`   // user:pass@host:port
	Timeout int               `json:"timeout,omitempty"` // milliseconds
	Actions []Action          `json:"actions,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Load    string            `json:"load,omitempty"` // load state to wait for, e.g. "networkidle"
	Block   []string          `json:"block,omitempty"`
}

// Cookie is a browser cookie captured after the page load.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  int64  `json:"expires"`
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite"`
}

// ParseResponse is the wire format returned by POST /parse.
// Status is the HTTP status of the rendered page, not of the API call.
type ParseResponse struct {
	Status  int               `json:"status"`
	Content string            `json:"content"`
	Error   string            `json:"error"`
	Headers map[string]string `json:"headers"`
	Cookies []Cookie          `json:"cookies"`
}
