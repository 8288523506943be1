package workpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool, err := New(2)
	require.NoError(t, err)
	defer pool.Close()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		task := NewTask()
		require.NoError(t, task.Submit(func() {
			count.Add(1)
			wg.Done()
		}))
		require.NoError(t, pool.Submit(task))
	}

	wg.Wait()
	pool.WaitForCompletion()
	assert.EqualValues(t, 20, count.Load())
	assert.EqualValues(t, 0, pool.OutstandingCount())
}

func TestPoolFIFOSubmissionOrder(t *testing.T) {
	pool, err := New(1)
	require.NoError(t, err)
	defer pool.Close()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		i := i
		task := NewTask()
		require.NoError(t, task.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		}))
		require.NoError(t, pool.Submit(task))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := range order {
		assert.Equal(t, i, order[i])
	}
}

func TestPoolPauseBlocksNewWorkNotInFlight(t *testing.T) {
	pool, err := New(1)
	require.NoError(t, err)
	defer pool.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	first := NewTask()
	require.NoError(t, first.Submit(func() {
		close(started)
		<-release
	}))
	require.NoError(t, pool.Submit(first))
	<-started

	pool.Pause()

	var ran atomic.Bool
	second := NewTask()
	require.NoError(t, second.Submit(func() { ran.Store(true) }))
	require.NoError(t, pool.Submit(second))

	time.Sleep(30 * time.Millisecond)
	assert.False(t, ran.Load())

	close(release)
	pool.Resume()
	pool.WaitForCompletion()
	assert.True(t, ran.Load())
}

func TestPoolOutstandingEqualsQueuedPlusRunning(t *testing.T) {
	pool, err := New(1)
	require.NoError(t, err)
	defer pool.Close()

	release := make(chan struct{})
	blocker := NewTask()
	require.NoError(t, blocker.Submit(func() { <-release }))
	require.NoError(t, pool.Submit(blocker))

	time.Sleep(20 * time.Millisecond)

	queuedTask := NewTask()
	require.NoError(t, queuedTask.Submit(func() {}))
	require.NoError(t, pool.Submit(queuedTask))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, pool.QueuedCount()+pool.RunningCount(), pool.OutstandingCount())

	close(release)
	pool.WaitForCompletion()
}

func TestPoolResetReconfiguresSize(t *testing.T) {
	pool, err := New(2)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pool.Reset(4))

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		task := NewTask()
		require.NoError(t, task.Submit(func() {
			count.Add(1)
			wg.Done()
		}))
		require.NoError(t, pool.Submit(task))
	}
	wg.Wait()
	pool.WaitForCompletion()
	assert.EqualValues(t, 8, count.Load())
}
