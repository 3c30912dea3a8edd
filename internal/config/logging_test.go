package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutLoggerWritesBothStreams(t *testing.T) {
	var console, sink bytes.Buffer
	logger := fanoutLogger(&console, &sink, slog.LevelInfo)

	logger.Info("article ingested", "article", "a1")
	logger.Debug("skipped", "article", "a2")

	assert.Contains(t, console.String(), "article ingested")
	assert.NotContains(t, console.String(), "skipped", "below-level records stay out")

	var record map[string]any
	require.NoError(t, json.Unmarshal(sink.Bytes(), &record))
	assert.Equal(t, "article ingested", record["msg"])
	assert.Equal(t, "a1", record["article"])
}

func TestNewLoggerAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsgraph.log")
	cfg := Config{LogFile: path, LogLevel: slog.LevelInfo}

	logger, closeLog := NewLogger(cfg)
	logger.Info("hello")
	require.NoError(t, closeLog())

	logger, closeLog = NewLogger(cfg)
	logger.Info("again")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "again")
}

func TestNewLoggerFallsBackToStderr(t *testing.T) {
	cfg := Config{
		LogFile:  filepath.Join(t.TempDir(), "no-such-dir", "newsgraph.log"),
		LogLevel: slog.LevelInfo,
	}

	logger, closeLog := NewLogger(cfg)
	require.NotNil(t, logger)
	require.NoError(t, closeLog())
}
