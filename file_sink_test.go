package asynclog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWriteBatchCreatesFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, "app", ".log", 0)
	require.NoError(t, err)

	require.NoError(t, sink.writeBatch([]record{newRecord([]byte("line one"))}))

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Equal(t, "line one\n", string(data))
}

func TestFileSinkRotatesWhenOverBudget(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, "app", ".log", 32)
	require.NoError(t, err)

	require.NoError(t, sink.writeBatch([]record{newRecord([]byte("0123456789"))}))
	require.NoError(t, sink.writeBatch([]record{newRecord([]byte("0123456789abcdefghij"))}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "expected the active file plus one rotated archive")

	var sawArchive bool
	for _, e := range entries {
		if e.Name() != "app.log" {
			sawArchive = true
		}
	}
	assert.True(t, sawArchive)
}

func TestFileSinkNameWithEmbeddedExtension(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, "app.custom", "", 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app.custom"), sink.staticPath())
}

func TestFileSinkStaticHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helper.txt")

	assert.False(t, FileExists(path))
	require.NoError(t, CreateFile(path))
	assert.True(t, FileExists(path))

	empty, err := FileIsEmpty(path)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, os.WriteFile(path, []byte("line1\nline2\nline3\n"), 0644))

	lines, err := ReadLineRange(path, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line1", "line2"}, lines)

	data, err := ReadByteRange(path, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, "line1", string(data))

	_, err = ReadLineRange(path, 5, 1)
	assert.Error(t, err)

	require.NoError(t, TruncateFile(path))
	empty, err = FileIsEmpty(path)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, RemoveFile(path))
	assert.False(t, FileExists(path))
}

func TestFileSinkWrapperMethodsCaptureErrorsInLedger(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, "missing", ".log", 0)
	require.NoError(t, err)

	ok := sink.Remove()
	assert.False(t, ok)
	assert.Equal(t, 1, sink.exceptions().len())
}
