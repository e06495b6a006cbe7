package fleetapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts an httptest server with the given handler and
// returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain", "http://localhost:8000", "http://localhost:8000", false},
		{"trailing slash trimmed", "http://localhost:8000/", "http://localhost:8000", false},
		{"path prefix kept", "https://fleet.internal/api/", "https://fleet.internal/api", false},
		{"query dropped", "http://localhost:8000?x=1", "http://localhost:8000", false},
		{"no scheme", "localhost:8000", "", true},
		{"wrong scheme", "ftp://localhost", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestWithTimeout_CopiesClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c, err := New("http://localhost:8000", WithHTTPClient(shared), WithTimeout(3*time.Second))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, shared.Timeout, "the caller's client is untouched")
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}

func TestListWorkers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/workers", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, `{"workers": [
			{"id": "worker-0", "host": "localhost", "port": 50051, "status": 0,
			 "last_report": "2026-10-16T09:30:00.123456", "active_pages": 2,
			 "cpu_usage": 12.5, "memory_usage": 40.1, "zone": "eu-1"},
			{"id": "worker-1", "host": "localhost", "port": 50052, "status": "UNKNOWN",
			 "last_report": "2026-10-16T09:30:01", "active_pages": 0,
			 "cpu_usage": 0, "memory_usage": 0}
		]}`)
	})

	workers, err := c.ListWorkers(context.Background())
	require.NoError(t, err)
	require.Len(t, workers, 2)

	assert.Equal(t, WorkerID("worker-0"), workers[0].ID)
	assert.Equal(t, StatusOK, workers[0].Status)
	assert.Equal(t, 50051, workers[0].Port)
	assert.Equal(t, 2, workers[0].ActivePages)
	assert.InDelta(t, 12.5, workers[0].CPUUsage, 0.001)
	assert.InDelta(t, 40.1, workers[0].MemoryUsage, 0.001)
	assert.Equal(t, "2026-10-16T09:30:00.123456", workers[0].LastReport)
	assert.JSONEq(t, `"eu-1"`, string(workers[0].Extra["zone"]))

	// Server order is preserved and the string status decodes as UNKNOWN
	assert.Equal(t, WorkerID("worker-1"), workers[1].ID)
	assert.Equal(t, StatusUnknown, workers[1].Status)
	assert.Nil(t, workers[1].Extra)
}

func TestListWorkers_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"workers": []}`)
	})

	workers, err := c.ListWorkers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, workers)
	assert.Empty(t, workers)
}

func TestListWorkers_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transport bool
		protocol  bool
	}{
		{"server error", http.StatusInternalServerError, `{"detail": "registry offline"}`, true, false},
		{"not found", http.StatusNotFound, `not here`, true, false},
		{"not json", http.StatusOK, `<html>`, false, true},
		{"missing workers", http.StatusOK, `{"items": []}`, false, true},
		{"null workers", http.StatusOK, `{"workers": null}`, false, true},
		{"workers wrong type", http.StatusOK, `{"workers": {"id": 1}}`, false, true},
		{"null worker entry", http.StatusOK, `{"workers": [{"id": "w1", "status": 0}, null]}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.ListWorkers(context.Background())
			require.Error(t, err)

			var transportErr *TransportError
			var protoErr *ProtocolError
			assert.Equal(t, tt.transport, errors.As(err, &transportErr))
			assert.Equal(t, tt.protocol, errors.As(err, &protoErr))
			if tt.transport {
				assert.Equal(t, tt.status, transportErr.StatusCode)
			}
		})
	}
}

func TestListWorkers_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.ListWorkers(context.Background())
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.Contains(t, err.Error(), OpList)
}

func TestSpawnWorker(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/spawn", r.URL.Path)
		_, _ = io.WriteString(w, `{"message": "Worker worker-3 spawned on port 50054"}`)
	})

	require.NoError(t, c.SpawnWorker(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestSpawnWorker_Detail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail": "Worker worker-3 failed to register within timeout"}`)
	})

	err := c.SpawnWorker(context.Background())

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, OpSpawn, cmdErr.Op)
	assert.Equal(t, http.StatusInternalServerError, cmdErr.StatusCode)
	assert.Equal(t, "Worker worker-3 failed to register within timeout", cmdErr.Message())
}

func TestSpawnWorker_NoDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `upstream down`)
	})

	err := c.SpawnWorker(context.Background())

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Empty(t, cmdErr.Detail)
	assert.Equal(t, "request failed with status code 502", cmdErr.Message())
}

func TestSpawnWorker_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	err = c.SpawnWorker(context.Background())

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 0, cmdErr.StatusCode)
	assert.NotEmpty(t, cmdErr.Message())
	assert.NotNil(t, cmdErr.Unwrap())
}

func TestTerminateWorker(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"worker_id": "worker 1", "status": "terminated"}`)
	})

	require.NoError(t, c.TerminateWorker(context.Background(), "worker 1"))
	assert.Equal(t, "/worker/worker%201", gotPath)
}

func TestTerminateWorker_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail": "Worker not found"}`)
	})

	err := c.TerminateWorker(context.Background(), "worker-9")

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, http.StatusNotFound, cmdErr.StatusCode)
	assert.Equal(t, "terminate worker: Worker not found", err.Error())
}

func TestParse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/parse", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ParseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)
		assert.Equal(t, []string{".png"}, req.Block)

		_, _ = io.WriteString(w, `{"status": 200, "content": "<html></html>", "error": "",
			"headers": {"content-type": "text/html"},
			"cookies": [{"name": "sid", "value": "abc", "domain": "example.com", "path": "/",
			             "expires": 0, "httpOnly": true, "secure": true, "sameSite": "Lax"}]}`)
	})

	resp, err := c.Parse(context.Background(), ParseRequest{URL: "https://example.com", Block: []string{".png"}})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "<html></html>", resp.Content)
	require.Len(t, resp.Cookies, 1)
	assert.True(t, resp.Cookies[0].HTTPOnly)
}

func TestParse_NoHealthyWorkers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"detail": "No healthy workers available"}`)
	})

	_, err := c.Parse(context.Background(), ParseRequest{URL: "https://example.com"})

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, http.StatusServiceUnavailable, cmdErr.StatusCode)
	assert.Equal(t, "No healthy workers available", cmdErr.Message())
}

func TestParse_RequiresURL(t *testing.T) {
	c, err := New("http://localhost:1")
	require.NoError(t, err)

	_, err = c.Parse(context.Background(), ParseRequest{})
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "url is required", cmdErr.Detail)
}

func TestCommand_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.SpawnWorker(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_LogsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"workers": []}`)
	}))
	t.Cleanup(srv.Close)

	buf := logger.NewBufferLogger()
	c, err := New(srv.URL, WithLogger(buf))
	require.NoError(t, err)

	_, err = c.ListWorkers(context.Background())
	require.NoError(t, err)

	msgs := buf.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "debug", msgs[0].Level)
	assert.Contains(t, msgs[0].Message, "GET /workers -> 200")
}
