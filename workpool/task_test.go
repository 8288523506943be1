package workpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskSubmitAndRunReturnsErasedValue(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.Submit(func(a, b int) int { return a + b }, 2, 3))

	result := task.Run()
	assert.Equal(t, 5, result)
}

func TestTaskRunAndForgetStillResolvesFuture(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.Submit(func() string { return "done" }))

	future := task.TakeFuture()
	task.RunAndForget()

	assert.Equal(t, "done", future.Wait())
}

func TestTaskRunOnUnboundTaskReturnsNilWithoutError(t *testing.T) {
	task := NewTask()
	assert.Nil(t, task.Run())
}

func TestTaskTakeFutureSecondCallIsInvalid(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.Submit(func() int { return 1 }))

	first := task.TakeFuture()
	second := task.TakeFuture()

	assert.NotSame(t, first, second)
	assert.True(t, second.Ready())
}

func TestTaskSubmitRejectsNonFunction(t *testing.T) {
	task := NewTask()
	err := task.Submit(42)
	assert.Error(t, err)
}

func TestTaskSubmitRejectsWrongArgCount(t *testing.T) {
	task := NewTask()
	err := task.Submit(func(a int) int { return a }, 1, 2)
	assert.Error(t, err)
}

func TestTaskNameGetSet(t *testing.T) {
	task := NewTask()
	task.SetName("worker-1")
	assert.Equal(t, "worker-1", task.Name())
}

func TestTaskIDsAreMonotonicAcrossSubmits(t *testing.T) {
	a, b := NewTask(), NewTask()
	require.NoError(t, a.Submit(func() {}))
	require.NoError(t, b.Submit(func() {}))
	assert.Less(t, a.ID(), b.ID())
}

func TestTaskMoveZeroesReceiver(t *testing.T) {
	task := NewTask()
	task.SetName("original")
	require.NoError(t, task.Submit(func() int { return 7 }))

	moved := task.Move()

	assert.Equal(t, "original", moved.Name())
	assert.Equal(t, 7, moved.Run())

	assert.Equal(t, "", task.Name())
	assert.EqualValues(t, 0, task.ID())
	assert.Nil(t, task.Run())
}

func TestTaskAsCallable(t *testing.T) {
	var ran bool
	task := NewTask()
	require.NoError(t, task.Submit(func() { ran = true }))

	task.AsCallable()()
	assert.True(t, ran)
}
