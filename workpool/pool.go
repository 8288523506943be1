package workpool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Pool is a fixed-size worker pool dispatching Tasks in FIFO submission
// order (C8). The source's raw worker-goroutine-and-mutex design is
// realized here as a small FIFO dispatcher sitting in front of an
// github.com/panjf2000/ants/v2 pool: ants supplies the bounded,
// reusable goroutine set, while the dispatcher enforces strict FIFO pop
// order and pause/resume gating that ants itself does not guarantee.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*Task
	size    int
	ants    *ants.Pool
	paused  bool
	running bool
	closed  bool

	queued      atomic.Int64
	runningCnt  atomic.Int64
	outstanding atomic.Int64

	metrics *PoolMetrics
}

// New builds a pool with poolSize workers. A poolSize of zero or less
// is a misuse (error kind 6: surfaces as a failed assertion upstream);
// here it is reported as an error instead of aborting, since Go favors
// explicit error returns over process termination in library code.
func New(poolSize int) (*Pool, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("workpool: pool size must be at least 1, got %d", poolSize)
	}

	p := &Pool{size: poolSize}
	p.cond = sync.NewCond(&p.mu)

	ap, err := ants.NewPool(poolSize, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("workpool: creating pool: %w", err)
	}
	p.ants = ap
	p.running = true

	go p.dispatch()
	return p, nil
}

// WithMetrics attaches Prometheus gauges exporting queued/outstanding/
// running counts (P15).
func (p *Pool) WithMetrics(m *PoolMetrics) *Pool {
	p.mu.Lock()
	p.metrics = m
	p.mu.Unlock()
	return p
}

// Submit enqueues task at the tail of the FIFO queue; pop order matches
// submission order regardless of completion order (P-FIFO).
func (p *Pool) Submit(t *Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("workpool: pool is closed")
	}
	p.queue = append(p.queue, t)
	p.queued.Add(1)
	p.outstanding.Add(1)
	p.reportMetrics()
	p.cond.Signal()
	p.mu.Unlock()
	return nil
}

// dispatch pops tasks off the FIFO queue and hands them to the ants
// pool, blocking while the pool is paused or the queue is empty (I8: a
// pause blocks new pops, not already-dispatched work).
func (p *Pool) dispatch() {
	for {
		p.mu.Lock()
		for !p.closed && (p.paused || len(p.queue) == 0) {
			p.cond.Wait()
		}
		if p.closed && len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}

		t := p.queue[0]
		p.queue = p.queue[1:]
		p.queued.Add(-1)
		ap := p.ants
		p.mu.Unlock()

		p.runningCnt.Add(1)
		p.reportMetrics()

		err := ap.Submit(func() {
			t.RunAndForget()
			p.runningCnt.Add(-1)
			p.outstanding.Add(-1)
			p.reportMetrics()
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		})
		if err != nil {
			// ants is either closed or overloaded beyond its own
			// capacity; treat as a dropped task (error kind 1 analog)
			// rather than blocking the dispatcher forever.
			p.runningCnt.Add(-1)
			p.outstanding.Add(-1)
			p.reportMetrics()
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		}
	}
}

// Pause blocks the dispatcher from popping new work; tasks already
// handed to ants continue to completion.
func (p *Pool) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume unblocks the dispatcher.
func (p *Pool) Resume() {
	p.mu.Lock()
	p.paused = false
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Reset reconfigures the pool to newSize workers following the
// sequence in §4.8: wait for outstanding work to drain, pause and stop
// the dispatcher, join the retiring worker set, then spin up a fresh
// ants pool of the requested size and restore the saved pause state
// (I9: reset never reconfigures around in-flight work).
func (p *Pool) Reset(newSize int) error {
	if newSize <= 0 {
		newSize = runtime.GOMAXPROCS(0)
	}

	p.WaitForCompletion()

	p.mu.Lock()
	savedPause := p.paused
	p.paused = true
	p.running = false
	old := p.ants
	p.mu.Unlock()

	old.Release()

	ap, err := ants.NewPool(newSize, ants.WithNonblocking(false))
	if err != nil {
		return fmt.Errorf("workpool: resetting pool: %w", err)
	}

	p.mu.Lock()
	p.ants = ap
	p.size = newSize
	p.paused = savedPause
	p.running = true
	p.cond.Broadcast()
	p.mu.Unlock()

	return nil
}

// WaitForCompletion blocks until outstanding work (queued plus running)
// drops to zero. Honors pause: if the pool is paused, only running work
// is waited on, since paused queued work will not drain on its own
// (I8).
func (p *Pool) WaitForCompletion() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.paused {
			if p.runningCnt.Load() == 0 {
				return
			}
		} else if p.outstanding.Load() == 0 {
			return
		}
		p.cond.Wait()
	}
}

// Close drains and retires the pool permanently. It first waits as
// WaitForCompletion does; while paused that covers only running work, and
// tasks still queued are then dropped.
func (p *Pool) Close() error {
	p.WaitForCompletion()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.running = false
	p.cond.Broadcast()
	ap := p.ants
	p.mu.Unlock()

	ap.Release()
	return nil
}

func (p *Pool) QueuedCount() int64      { return p.queued.Load() }
func (p *Pool) RunningCount() int64     { return p.runningCnt.Load() }
func (p *Pool) OutstandingCount() int64 { return p.outstanding.Load() } // I7

func (p *Pool) reportMetrics() {
	if p.metrics == nil {
		return
	}
	p.metrics.queued.Set(float64(p.queued.Load()))
	p.metrics.running.Set(float64(p.runningCnt.Load()))
	p.metrics.outstanding.Set(float64(p.outstanding.Load()))
}
