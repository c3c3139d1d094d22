package common

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("fund", "f1").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "f1", entry["fund"])
}

func TestNewLoggerFromConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chitlens.log")
	logger := NewLoggerFromConfig(LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Outputs:  []string{"file"},
		FilePath: path,
	})

	logger.Debug().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewSilentLogger(t *testing.T) {
	logger := NewSilentLogger()
	// Must not panic
	logger.Error().Msg("discarded")
}

func TestNewLoggerWithOutput_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("disabled", &buf)
	logger.Error().Msg("dropped")
	assert.Empty(t, buf.String())
}
