package dispatch

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is a unit of work submitted to a Dispatcher.
type Task func()

// Dispatcher executes submitted tasks asynchronously from the caller.
// Implemented by Queue and Sync.
type Dispatcher interface {
	// Submit enqueues a task for execution. Submit never blocks on the
	// task itself and never runs it on the decode path of a connection.
	Submit(task Task)
}

// Queue is a single-consumer FIFO dispatcher backed by one worker goroutine.
// The zero value is not usable; create with NewQueue and call Start.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	tasks []Task

	running atomic.Bool
	stopped bool
	wg      sync.WaitGroup

	logger *slog.Logger
}

// NewQueue creates a new queue dispatcher. Pass nil to use slog.Default
// for panic reports.
func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{logger: logger}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the worker goroutine. Calling Start on a running queue
// is a no-op.
func (q *Queue) Start() {
	if q.running.Swap(true) {
		return
	}

	q.mu.Lock()
	q.stopped = false
	q.mu.Unlock()

	q.wg.Add(1)
	go q.run()
}

// Stop drains the queue and waits for the worker to exit. Already submitted
// tasks still run; tasks submitted after Stop are dropped.
func (q *Queue) Stop() {
	if !q.running.Swap(false) {
		return
	}

	q.mu.Lock()
	q.stopped = true
	q.cond.Signal()
	q.mu.Unlock()

	q.wg.Wait()
}

// Submit enqueues a task. Tasks run in submission order on the worker
// goroutine. Submitting to a stopped queue drops the task.
func (q *Queue) Submit(task Task) {
	if task == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || !q.running.Load() {
		return
	}

	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 && q.stopped {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.invoke(task)
	}
}

// invoke runs a single task, recovering from panics so a faulty listener
// cannot stop dispatch for other listeners or later events.
func (q *Queue) invoke(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("dispatched task panicked", "panic", r)
		}
	}()
	task()
}

// Sync is a Dispatcher that runs tasks inline on the submitting goroutine.
// Intended for deterministic tests; panics propagate to the caller.
type Sync struct{}

// Submit runs the task immediately.
func (Sync) Submit(task Task) {
	if task != nil {
		task()
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Dispatcher = (*Queue)(nil)
	_ Dispatcher = Sync{}
)
