package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerRenamesKeysAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "farmd", "test", ParseLevel("warn"))
	logger.Info("dropped")
	logger.Warn("call rejected", "call", "claim_rewards")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "WARN", line["severity"])
	require.Equal(t, "call rejected", line["message"])
	require.Equal(t, "farmd", line["service"])
	require.Equal(t, "test", line["env"])
	require.Equal(t, "claim_rewards", line["call"])
	require.Contains(t, line, "timestamp")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmd.log")
	logger, closer := SetupWithOptions("farmd", "", Options{File: path, MaxSizeMB: 1})
	logger.Info("written")
	require.NoError(t, closer.Close())
	require.FileExists(t, path)
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("headers", "authorization=secret").Value.String())
	require.Equal(t, "0xabc", MaskField("caller", "0xabc").Value.String())
	require.Equal(t, "", MaskField("headers", "").Value.String())
}

func TestMaskHeaders(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "farmd", "", slog.LevelInfo)
	logger.Info("starting telemetry", MaskHeaders("headers", map[string]string{
		"x-tenant":      "farm",
		"authorization": "Bearer secret",
	}))
	require.NotContains(t, buf.String(), "secret")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	headers, ok := line["headers"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, RedactedValue, headers["authorization"])
	require.Equal(t, RedactedValue, headers["x-tenant"])
}
