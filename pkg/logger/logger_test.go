package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "console"})
	})

	WithContext(Fields{"request_id": "abc"}).Info("screening finished", Fields{"matches": 2})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "screening finished", line["message"])
	assert.Equal(t, "abc", line["request_id"])
	assert.Equal(t, float64(2), line["matches"])
	assert.Contains(t, line["caller"], "logger_test.go")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "console"})
	})

	Debug("hidden")
	Info("hidden too")
	assert.Empty(t, buf.String())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLogLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("nonsense"))
	assert.NotEqual(t, parseLogLevel("info"), parseLogLevel("debug"))
}
