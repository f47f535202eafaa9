// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskloop/internal/config"
	"github.com/phrazzld/taskloop/internal/platform/logger"
)

// captureStdout redirects stdout around fn and returns what was
// written. Setup writes JSON log records to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	os.Stdout = orig
	require.NoError(t, w.Close())

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestSetupValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
		t.Run(level, func(t *testing.T) {
			out := captureStdout(t, func() {
				log, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: level})
				require.NoError(t, err)
				require.NotNil(t, log)
				log.Error("probe message")
			})
			assert.Contains(t, out, "probe message")
		})
	}
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	// The warning about the bad level goes to stderr via a temporary
	// text logger.
	origStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	var log *slog.Logger
	_ = captureStdout(t, func() {
		log, err = logger.Setup(config.ServerConfig{Port: 8080, LogLevel: "verbose"})
	})

	os.Stderr = origStderr
	require.NoError(t, w.Close())
	buf := new(bytes.Buffer)
	_, copyErr := io.Copy(buf, r)
	require.NoError(t, copyErr)

	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Contains(t, buf.String(), "invalid log level configured")
	assert.Contains(t, buf.String(), "verbose")

	// Info is the fallback: debug records must be filtered out.
	out := captureStdout(t, func() {
		log.Debug("debug probe")
		log.Info("info probe")
	})
	assert.NotContains(t, out, "debug probe")
	assert.Contains(t, out, "info probe")
}

func TestSetupInstallsDefaultLogger(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	out := captureStdout(t, func() {
		_, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: "info"})
		require.NoError(t, err)
		slog.Info("default logger probe")
	})
	assert.Contains(t, out, "default logger probe")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "expected JSON output")
}
