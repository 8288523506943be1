// Package workpool provides a type-erased task abstraction and a fixed
// worker pool built on top of it (C7/C8), grounded on the task/future
// patterns in Swind-go-task-runner's core package and dispatched through
// a FIFO queue in the style of its FIFOTaskQueue, generalized to run on
// top of github.com/panjf2000/ants/v2 instead of hand-rolled worker
// goroutines.
package workpool

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// idCounter is the process-wide monotonic task identifier allocator.
// Wrap is undefined behavior and considered a bug (§3/§9, Open Question
// 3): long-lived processes that allocate more than 2^32 tasks will see
// identifier collisions, and this implementation does not guard against
// it, matching the source's own lack of wrap protection.
var idCounter atomic.Uint32

func nextTaskID() uint32 {
	return idCounter.Add(1) - 1
}

// Future is a one-shot result channel. Its value becomes available
// exactly once, when the owning Task runs.
type Future struct {
	done  chan struct{}
	mu    sync.Mutex
	val   any
	valid bool
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) set(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.valid {
		return
	}
	f.val = v
	f.valid = true
	close(f.done)
}

// Wait blocks until the future is ready and returns its erased value.
func (f *Future) Wait() any {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val
}

// Ready reports whether the future has a value without blocking.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

var invalidFuture = &Future{done: closedChan()}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Task wraps an arbitrary callable bound over arbitrary arguments into a
// uniformly-typed run-once unit (C7). Binding happens via reflection so
// that Submit can accept any function signature, the way the source's
// dynamically-typed value box erases argument and result types.
type Task struct {
	mu          sync.Mutex
	id          uint32
	name        string
	callable    reflect.Value
	callArgs    []reflect.Value
	bound       bool
	ran         bool
	future      *Future
	futureTaken bool
}

// NewTask returns an empty task with no binding.
func NewTask() *Task {
	return &Task{future: newFuture()}
}

// Submit binds callable over args, replacing any prior binding and
// assigning a fresh identifier. callable must be a function; its
// parameter count must match len(args).
func (t *Task) Submit(callable any, args ...any) error {
	v := reflect.ValueOf(callable)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("workpool: callable must be a function, got %T", callable)
	}
	ft := v.Type()
	if ft.IsVariadic() {
		if len(args) < ft.NumIn()-1 {
			return fmt.Errorf("workpool: callable expects at least %d arguments, got %d", ft.NumIn()-1, len(args))
		}
	} else if ft.NumIn() != len(args) {
		return fmt.Errorf("workpool: callable expects %d arguments, got %d", ft.NumIn(), len(args))
	}

	argVals := make([]reflect.Value, len(args))
	for i, a := range args {
		argVals[i] = reflect.ValueOf(a)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.callable = v
	t.callArgs = argVals
	t.bound = true
	t.ran = false
	t.future = newFuture()
	t.futureTaken = false
	t.id = nextTaskID()
	return nil
}

// Run invokes the bound callable exactly once and returns its erased
// result; a void-returning callable yields a nil erased value. Calling
// Run on an unbound task returns nil with no error (error kind 7).
func (t *Task) Run() any {
	t.mu.Lock()
	if !t.bound || t.ran {
		t.mu.Unlock()
		return nil
	}
	callable, args, future := t.callable, t.callArgs, t.future
	t.ran = true
	t.mu.Unlock()

	results := callable.Call(args)

	var erased any
	switch len(results) {
	case 0:
	case 1:
		erased = results[0].Interface()
	default:
		vals := make([]any, len(results))
		for i, r := range results {
			vals[i] = r.Interface()
		}
		erased = vals
	}

	future.set(erased)
	return erased
}

// RunAndForget invokes the binding; the future becomes ready but its
// value is not returned to the caller.
func (t *Task) RunAndForget() {
	t.Run()
}

// AsCallable returns a zero-argument procedure that invokes
// RunAndForget. The pool does not use it: its queue holds *Task values
// and it calls RunAndForget directly.
func (t *Task) AsCallable() func() {
	return t.RunAndForget
}

// TakeFuture consumes the future; subsequent calls on the same task
// yield an invalid future that is already ready and holds a nil value.
func (t *Task) TakeFuture() *Future {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.futureTaken {
		return invalidFuture
	}
	t.futureTaken = true
	return t.future
}

// ID returns the task's stable identifier.
func (t *Task) ID() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Name returns the task's descriptive name.
func (t *Task) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// SetName sets the task's descriptive name.
func (t *Task) SetName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
}

// Move transfers this task's binding, identifier, and future into a new
// Task, leaving the receiver with an empty binding, an invalid future,
// and identifier zero — the move semantics named in §4.7.
func (t *Task) Move() *Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	moved := &Task{
		id:          t.id,
		name:        t.name,
		callable:    t.callable,
		callArgs:    t.callArgs,
		bound:       t.bound,
		ran:         t.ran,
		future:      t.future,
		futureTaken: t.futureTaken,
	}

	t.id = 0
	t.name = ""
	t.callable = reflect.Value{}
	t.callArgs = nil
	t.bound = false
	t.ran = false
	t.future = invalidFuture
	t.futureTaken = true

	return moved
}
