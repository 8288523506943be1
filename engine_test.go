package asynclog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	sink := NewConsoleSinkTo(&buf)
	eng, err := NewEngine(sink)
	require.NoError(t, err)
	eng.Start()
	t.Cleanup(func() { _ = eng.Destroy() })
	return eng, &buf
}

func TestEngineWriteStringIsObservedAfterFlush(t *testing.T) {
	eng, buf := newTestEngine(t)
	require.NoError(t, eng.Write("hello world"))
	eng.Flush()

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "hello world")
	}, time.Second, 5*time.Millisecond)
}

func TestEngineWriteIntegerBlobRoundTrips(t *testing.T) {
	eng, buf := newTestEngine(t)
	require.NoError(t, eng.Write(uint32(42)))
	eng.Flush()

	require.Eventually(t, func() bool {
		return strings.TrimSpace(buf.String()) != ""
	}, time.Second, 5*time.Millisecond)

	rendered := strings.TrimSpace(buf.String())
	value, err := parseBinaryString(rendered)
	require.NoError(t, err)
	assert.EqualValues(t, 42, value)
}

func TestEngineWriteAfterDestroyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSinkTo(&buf)
	eng, err := NewEngine(sink)
	require.NoError(t, err)
	eng.Start()
	require.NoError(t, eng.Destroy())

	assert.NoError(t, eng.Write("ignored"))
}

func TestEngineDestroyIsIdempotent(t *testing.T) {
	sink := NewConsoleSinkTo(&bytes.Buffer{})
	eng, err := NewEngine(sink)
	require.NoError(t, err)
	eng.Start()

	assert.NoError(t, eng.Destroy())
	assert.NoError(t, eng.Destroy())
}

func TestEngineRejectsUnsupportedType(t *testing.T) {
	eng, _ := newTestEngine(t)
	err := eng.Write(3.14)
	assert.Error(t, err)
}
