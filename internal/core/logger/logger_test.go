package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "warn", JSON: true, Output: zapcore.AddSync(&buf)})
	defer cleanup()

	l.Info("dropped")
	l.Warn("kept", zap.String("user_id", "42"))
	_ = l.Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Contains(t, entry, "ts")
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "loud", JSON: true, Output: zapcore.AddSync(&buf)})
	defer cleanup()

	l.Debug("hidden")
	l.Info("shown")
	_ = l.Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "debug", JSON: true, Output: zapcore.AddSync(&buf)})
	defer cleanup()

	w := ToWriter(l, zapcore.InfoLevel)
	n, err := w.Write([]byte("[GIN-debug] GET /users\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	_ = l.Sync()
	assert.Contains(t, buf.String(), `"msg":"[GIN-debug] GET /users"`)
}
