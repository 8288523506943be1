package asynclog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// engineState models the lifecycle named in §4.5: initialized -> running
// -> draining -> terminated. No writes are accepted once draining begins.
type engineState int32

const (
	stateInitialized engineState = iota
	stateRunning
	stateDraining
	stateTerminated
)

// Engine owns the record buffer and exactly one sink (C5). It runs a
// single watcher goroutine that drains the buffer and hands each batch
// to a transient writer goroutine, joined with an errgroup before the
// watcher continues — this keeps the producer lock released for the
// whole of the sink I/O, per §4.5's rationale.
type Engine struct {
	buf  *recordBuffer
	sink Sink

	state       atomic.Int32
	watcherDone chan struct{}
	startOnce   sync.Once
	destroyOnce sync.Once
	destroyErr  error

	metrics       *EngineMetrics
	lastRotations uint64
	lastDropped   uint64
}

// rotationReporter is implemented by sinks that rotate (FileSink); the
// watcher polls it after every batch to keep the rotations_total counter
// in sync without the sink needing a reference back to the engine.
type rotationReporter interface {
	RotationCount() uint64
}

// NewEngine constructs an engine around sink, which must be non-nil.
// Construction does not start the watcher; call Start.
func NewEngine(sink Sink) (*Engine, error) {
	if sink == nil {
		return nil, fmt.Errorf("asynclog: engine requires a non-nil sink")
	}
	return &Engine{
		buf:         newRecordBuffer(),
		sink:        sink,
		watcherDone: make(chan struct{}),
		metrics:     NewEngineMetrics("", nil),
	}, nil
}

// WithMetrics attaches a metrics exporter constructed against a caller's
// registry. Call before Start.
func (e *Engine) WithMetrics(m *EngineMetrics) *Engine {
	if m != nil {
		e.metrics = m
	}
	return e
}

// Start transitions initialized -> running and spawns the watcher.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.state.Store(int32(stateRunning))
		go e.watch()
	})
}

func (e *Engine) watch() {
	defer close(e.watcherDone)
	for {
		shutdown := e.buf.waitSignal()
		batch := e.buf.drain()

		if len(batch) > 0 {
			e.metrics.batchSize.Observe(float64(len(batch)))

			var g errgroup.Group
			g.Go(func() error {
				return e.sink.writeBatch(batch)
			})
			if err := g.Wait(); err != nil {
				internalLogger().Warn("sink write failed", zap.Error(err))
				e.metrics.exceptions.Inc()
			}

			if rr, ok := e.sink.(rotationReporter); ok {
				if n := rr.RotationCount(); n > e.lastRotations {
					e.metrics.rotations.Add(float64(n - e.lastRotations))
					e.lastRotations = n
				}
			}
		}

		if shutdown {
			return
		}
	}
}

// Write accepts a string, a []string, a []byte (pushed as-is, so a
// []uint8 is not rendered as blobs), an unsigned integer blob rendered
// as its binary textual form, or a []uint16/[]uint32/[]uint64 of blobs,
// pushing each onto
// the record buffer. No writes are accepted once draining has begun;
// such calls are silently dropped, matching error kind 1's "ignored
// silently" policy for queue-boundary violations.
func (e *Engine) Write(v any) error {
	if engineState(e.state.Load()) != stateRunning {
		return nil
	}

	switch val := v.(type) {
	case string:
		e.buf.push([]byte(val))
	case []string:
		for _, s := range val {
			e.buf.push([]byte(s))
		}
	case []byte:
		e.buf.push(val)
	case uint8:
		e.pushBlob(8, uint64(val))
	case uint16:
		e.pushBlob(16, uint64(val))
	case uint32:
		e.pushBlob(32, uint64(val))
	case uint64:
		e.pushBlob(64, val)
	case []uint16:
		for _, b := range val {
			e.pushBlob(16, uint64(b))
		}
	case []uint32:
		for _, b := range val {
			e.pushBlob(32, uint64(b))
		}
	case []uint64:
		for _, b := range val {
			e.pushBlob(64, b)
		}
	default:
		return fmt.Errorf("asynclog: unsupported write value type %T", v)
	}
	return nil
}

func (e *Engine) pushBlob(width int, value uint64) {
	s, err := renderBinaryString(width, value)
	if err != nil {
		internalLogger().Warn("blob render failed", zap.Error(err))
		return
	}
	e.buf.push([]byte(s))
}

// Append is an alias of Write with identical semantics (§4.5).
func (e *Engine) Append(v any) error { return e.Write(v) }

// Flush delegates to the record buffer's flush.
func (e *Engine) Flush() { e.buf.flush() }

// Destroy triggers shutdown, joins the watcher, quiesces the sink, and
// drains the exception ledger to disk. Idempotent: a second call has no
// additional effect (P6).
func (e *Engine) Destroy() error {
	e.destroyOnce.Do(func() {
		e.state.Store(int32(stateDraining))
		e.buf.requestShutdown()
		<-e.watcherDone
		e.state.Store(int32(stateTerminated))

		if n := e.buf.droppedCount(); n > e.lastDropped {
			e.metrics.droppedRecords.Add(float64(n - e.lastDropped))
			e.lastDropped = n
		}

		err := e.sink.exceptions().drainToFile()

		if closeErr := e.sink.close(); closeErr != nil && err == nil {
			err = closeErr
		}
		e.destroyErr = err
	})
	return e.destroyErr
}

// DroppedRecords reports records dropped by push-after-shutdown.
func (e *Engine) DroppedRecords() uint64 { return e.buf.droppedCount() }

// Exceptions returns a read-only snapshot of the sink's exception ledger,
// for testing (§7).
func (e *Engine) Exceptions() []exceptionEntry { return e.sink.exceptions().snapshot() }
