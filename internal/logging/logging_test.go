package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Console: true, Stderr: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("quiz started")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "quiz started", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.log")
	logger, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("written")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
}

func TestNew_NoSinks(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Console: true, Format: "xml"})
	assert.Error(t, err)
}
