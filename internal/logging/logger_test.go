package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(level logrus.Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{l: l}, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInfoWithContext(t *testing.T) {
	logger, buf := newBufferedLogger(logrus.InfoLevel)

	logger.Info("Sync completed", map[string]interface{}{
		"resource": "properties",
		"synced":   3,
	})

	entry := decodeLine(t, buf)
	assert.Equal(t, "Sync completed", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "properties", entry["resource"])
	assert.Equal(t, 3.0, entry["synced"])
}

func TestErrorIncludesError(t *testing.T) {
	logger, buf := newBufferedLogger(logrus.InfoLevel)

	logger.Error("Push failed", errors.New("connection refused"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "connection refused", entry["error"])
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	logger, buf := newBufferedLogger(logrus.InfoLevel)

	logger.Debug("verbose detail")
	assert.Empty(t, buf.Bytes())
}

func TestMultipleContextMapsMerge(t *testing.T) {
	logger, buf := newBufferedLogger(logrus.InfoLevel)

	logger.Warn("held record",
		map[string]interface{}{"resource": "tenants"},
		map[string]interface{}{"record_id": "7"},
	)

	entry := decodeLine(t, buf)
	assert.Equal(t, "tenants", entry["resource"])
	assert.Equal(t, "7", entry["record_id"])
}

func TestGetInitializesOnce(t *testing.T) {
	first := Get()
	second := Get()
	assert.Same(t, first, second)
}
