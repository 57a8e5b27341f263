package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/record-service/internal/config"
	"github.com/aanand-mishra/record-service/internal/metrics"
	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:     "dev",
		Version: "test",
		HTTPServer: config.HTTPServer{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: 2 * time.Second,
		},
		MetricsServer: config.MetricsServer{Port: 0},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer starts the full API handler (middleware included) on an
// httptest server backed by a seeded in-memory store.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := New(testConfig(), memory.New(storage.SeedRecords()...), metrics.New("test"), testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.api.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) (int, string, http.Header) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b), resp.Header
}

func TestRecordLifecycle(t *testing.T) {
	ts := testServer(t)

	code, body, _ := call(t, ts, http.MethodPost, "/api/data", `{"id":9,"nome":"Test","idade":5}`)
	require.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"message":"Data added successfully"}`, body)

	code, body, _ = call(t, ts, http.MethodGet, "/api/data/9", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":9,"nome":"Test","idade":5}`, body)

	code, _, _ = call(t, ts, http.MethodPut, "/api/data/1", `{"idade":41}`)
	require.Equal(t, http.StatusOK, code)
	_, body, _ = call(t, ts, http.MethodGet, "/api/data/1", "")
	assert.JSONEq(t, `{"id":1,"nome":"Chaves","idade":41}`, body)

	for range 2 {
		code, body, _ = call(t, ts, http.MethodDelete, "/api/data/1", "")
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"message":"Data deleted successfully"}`, body)
	}
	code, body, _ = call(t, ts, http.MethodGet, "/api/data/1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"message":"Data not found"}`, body)

	code, body, _ = call(t, ts, http.MethodGet, "/api/data", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"nome":"Test"`)
	assert.NotContains(t, body, `"nome":"Chaves"`)
}

func TestHomeAndHealth(t *testing.T) {
	ts := testServer(t)

	code, body, hdr := call(t, ts, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, hdr.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Record Service")
	assert.NotEmpty(t, hdr.Get("X-Request-ID"))

	code, _, _ = call(t, ts, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body, _ = call(t, ts, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t)

	call(t, ts, http.MethodGet, "/", "")
	call(t, ts, http.MethodGet, "/api/data", "")
	call(t, ts, http.MethodGet, "/api/data/2", "")
	call(t, ts, http.MethodGet, "/api/data/3", "")
	call(t, ts, http.MethodGet, "/api/data/999999", "")

	code, body, hdr := call(t, ts, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "text/plain; charset=utf-8", hdr.Get("Content-Type"))
	assert.Contains(t, body, `request_count_total{endpoint="/"} 1`)
	assert.Contains(t, body, `request_count_total{endpoint="/api/data"} 1`)
	assert.Contains(t, body, `request_count_total{endpoint="/api/data/{id}"} 3`)
	assert.Contains(t, body, `request_processing_seconds_count{endpoint="/api/data/{id}"} 3`)
	assert.Contains(t, body, `http_requests_total{code="200",method="get"} 4`)
	assert.Contains(t, body, `http_requests_total{code="404",method="get"} 1`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="404",endpoint="/api/data/{id}",method="get"} 1`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="200",endpoint="/api/data/{id}",method="get"} 2`)
	assert.Contains(t, body, `inprogress_requests{endpoint="/api/data"} 0`)
}

func TestServeBothListeners(t *testing.T) {
	srv, err := New(testConfig(), memory.New(storage.SeedRecords()...), metrics.New("test"), testLogger())
	require.NoError(t, err)

	apiLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	metricsLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, apiLn, metricsLn) }()

	resp, err := http.Get("http://" + apiLn.Addr().String() + "/api/data")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + metricsLn.Addr().String() + "/metrics")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(b), `request_count_total{endpoint="/api/data"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servers did not shut down")
	}
}
