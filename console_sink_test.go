package asynclog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSinkWriteBatchEchoesRecords(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSinkTo(&buf)

	batch := []record{newRecord([]byte("first")), newRecord([]byte("second"))}
	require.NoError(t, sink.writeBatch(batch))

	assert.Equal(t, "first\nsecond\n", buf.String())
	assert.Zero(t, sink.exceptions().len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assertErr
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestConsoleSinkCapturesWriteFailure(t *testing.T) {
	sink := NewConsoleSinkTo(failingWriter{})
	err := sink.writeBatch([]record{newRecord([]byte("x"))})
	require.Error(t, err)
	assert.Equal(t, 1, sink.exceptions().len())
}
