package asynclog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBytesStripsNullPadding(t *testing.T) {
	r := newRecord([]byte("hello"))
	assert.Equal(t, "hello", string(r.bytes()))
}

func TestRecordBufferPushSplitsOversizedPayload(t *testing.T) {
	b := newRecordBuffer()
	payload := strings.Repeat("x", recordPayloadMax+10)
	b.push([]byte(payload))

	b.mu.Lock()
	n := len(b.queue)
	b.mu.Unlock()
	assert.Equal(t, 2, n)
}

func TestRecordBufferDropsPushAfterShutdown(t *testing.T) {
	b := newRecordBuffer()
	b.requestShutdown()
	b.push([]byte("dropped"))
	assert.EqualValues(t, 1, b.droppedCount())

	batch := b.drain()
	assert.Empty(t, batch)
}

func TestRecordBufferSignalsAtNotifyThreshold(t *testing.T) {
	b := newRecordBuffer()

	woken := make(chan struct{})
	go func() {
		b.waitSignal()
		close(woken)
	}()

	for i := 0; i < notifyThreshold-1; i++ {
		b.push([]byte("x"))
	}
	select {
	case <-woken:
		t.Fatal("watcher woke before reaching notifyThreshold")
	case <-time.After(20 * time.Millisecond):
	}

	b.push([]byte("x"))

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("watcher did not wake at notifyThreshold")
	}
}

func TestRecordBufferDrainResetsReady(t *testing.T) {
	b := newRecordBuffer()
	for i := 0; i < notifyThreshold; i++ {
		b.push([]byte("x"))
	}
	batch := b.drain()
	require.Len(t, batch, notifyThreshold)

	b.mu.Lock()
	ready := b.ready
	b.mu.Unlock()
	assert.False(t, ready)
}
