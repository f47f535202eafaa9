package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskloop/internal/config"
	"github.com/phrazzld/taskloop/internal/taskloop"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Jobs: config.JobsConfig{
			HeartbeatInterval: time.Hour,
			StatsInterval:     time.Hour,
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := newApplication(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if app.taskLoop.State() == taskloop.StateRunning {
			app.taskLoop.Stop()
		}
	})
	return app
}

func TestNewApplicationWiring(t *testing.T) {
	app := newTestApplication(t)

	require.NotNil(t, app.taskLoop)
	require.NotNil(t, app.eventEmitter)
	assert.Equal(t, taskloop.StateStopped, app.taskLoop.State())

	// Both built-in jobs are registered before the loop starts.
	snap := app.taskLoop.Snapshot()
	require.Len(t, snap.Jobs, 2)
	assert.Equal(t, "heartbeat", snap.Jobs[0].Name)
	assert.Equal(t, "queue_stats", snap.Jobs[1].Name)
}

func TestRouterHealthEndpoint(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestRouterSubmitAndStatus(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, app.taskLoop.Start())

	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	// Submit a log_message task through the full stack.
	resp, err := http.Post(server.URL+"/api/tasks", "application/json",
		strings.NewReader(`{"type":"log_message","payload":{"message":"hi"}}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// A payload without a message is rejected before anything is queued.
	resp2, err := http.Post(server.URL+"/api/tasks", "application/json",
		strings.NewReader(`{"type":"log_message","payload":{}}`))
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)

	// The status endpoint reflects the running loop.
	resp3, err := http.Get(server.URL + "/api/scheduler")
	require.NoError(t, err)
	defer func() { _ = resp3.Body.Close() }()
	require.Equal(t, http.StatusOK, resp3.StatusCode)

	var snap taskloop.Snapshot
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&snap))
	assert.Equal(t, taskloop.StateRunning, snap.State)
	assert.Len(t, snap.Jobs, 2)
}

func TestCleanupStopsLoop(t *testing.T) {
	app := newTestApplication(t)
	require.NoError(t, app.taskLoop.Start())

	app.cleanup()
	assert.Equal(t, taskloop.StateStopped, app.taskLoop.State())
}
