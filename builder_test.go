package asynclog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBuildsConsoleLoggerByDefault(t *testing.T) {
	l, err := NewBuilder().Level(LevelDebug).Debug(true).Build()
	require.NoError(t, err)
	defer l.Shutdown(time.Second)

	cfg := l.GetConfig()
	assert.False(t, cfg.FileLogging)
	assert.Equal(t, LevelDebug, cfg.Level)
}

func TestBuilderBuildsFileLoggerWithDirectory(t *testing.T) {
	dir := t.TempDir()
	l, err := NewBuilder().
		FileLogging(true).
		Name("svc").
		Directory(dir).
		MaxBytes(4096).
		Build()
	require.NoError(t, err)
	defer l.Shutdown(time.Second)

	cfg := l.GetConfig()
	assert.True(t, cfg.FileLogging)
	assert.Equal(t, "svc", cfg.Name)
	assert.EqualValues(t, 4096, cfg.MaxBytes)
}

func TestBuilderRejectsFileLoggingWithoutName(t *testing.T) {
	_, err := NewBuilder().FileLogging(true).Name("").Build()
	assert.Error(t, err)
}
