package asynclog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValue(t *testing.T) {
	key, value, err := parseKeyValue("level=8")
	require.NoError(t, err)
	assert.Equal(t, "level", key)
	assert.Equal(t, "8", value)

	_, _, err = parseKeyValue("no-equals-sign")
	assert.Error(t, err)
}

func TestApplyConfigFieldKnownKeys(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, applyConfigField(cfg, "level", "8"))
	assert.Equal(t, LevelError, cfg.Level)

	require.NoError(t, applyConfigField(cfg, "file_logging", "true"))
	assert.True(t, cfg.FileLogging)

	require.NoError(t, applyConfigField(cfg, "name", "svc"))
	assert.Equal(t, "svc", cfg.Name)
}

func TestApplyConfigFieldUnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	err := applyConfigField(cfg, "does_not_exist", "x")
	assert.Error(t, err)
}

func TestApplyConfigFieldRejectsBadIntValue(t *testing.T) {
	cfg := DefaultConfig()
	err := applyConfigField(cfg, "level", "not-a-number")
	assert.Error(t, err)
}

func TestLoggerApplyOverrideAggregatesErrors(t *testing.T) {
	l := NewLogger()
	err := l.ApplyOverride("level=not-a-number", "unknown_key=x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level")
}

func TestLoggerApplyOverrideSucceeds(t *testing.T) {
	l := NewLogger()
	require.NoError(t, l.ApplyOverride("level=8", "debug=true"))
	cfg := l.GetConfig()
	assert.Equal(t, LevelError, cfg.Level)
	assert.True(t, cfg.Debug)
	require.NoError(t, l.Shutdown(time.Second))
}
