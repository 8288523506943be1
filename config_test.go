package asynclog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.validate())
	assert.False(t, cfg.FileLogging)
	assert.Equal(t, LevelInfo, cfg.Level)
}

func TestConfigValidateRejectsFileLoggingWithoutName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FileLogging = true
	cfg.Name = ""
	assert.Error(t, cfg.validate())
}

func TestConfigValidateRejectsOutOfRangeHeartbeat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatLevel = 4
	assert.Error(t, cfg.validate())

	cfg2 := DefaultConfig()
	cfg2.HeartbeatLevel = 1
	cfg2.HeartbeatIntervalS = 0
	assert.Error(t, cfg2.validate())
}

func TestConfigCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Name = "changed"
	assert.NotEqual(t, cfg.Name, clone.Name)
}

func TestNewConfigFromDefaultsAppliesOverrides(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"level":        int64(LevelWarn),
		"file_logging": true,
		"name":         "svc",
	})
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, cfg.Level)
	assert.True(t, cfg.FileLogging)
	assert.Equal(t, "svc", cfg.Name)
}

func TestNewConfigFromDefaultsRejectsUnknownKey(t *testing.T) {
	_, err := NewConfigFromDefaults(map[string]any{"nonexistent": "value"})
	assert.Error(t, err)
}

func TestNewConfigFromFileMissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfigFromFile(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig.Level, cfg.Level)
}

func TestNewConfigFromYAMLFileOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	yamlDoc := "level: 8\nfile_logging: true\nname: svc\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	cfg, err := NewConfigFromYAMLFile(path)
	require.NoError(t, err)
	assert.Equal(t, LevelError, cfg.Level)
	assert.True(t, cfg.FileLogging)
	assert.Equal(t, "svc", cfg.Name)
	// unset keys keep the built-in default rather than zeroing out.
	assert.Equal(t, defaultConfig.TimestampFormat, cfg.TimestampFormat)
}

func TestNewConfigFromYAMLFileRejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("file_logging: true\nname: \"\"\n"), 0644))

	_, err := NewConfigFromYAMLFile(path)
	assert.Error(t, err)
}

func TestNewConfigFromYAMLFileMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewConfigFromYAMLFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
