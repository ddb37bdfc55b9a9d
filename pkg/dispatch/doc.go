// Package dispatch decouples listener invocation from protocol processing.
//
// The decode path of a connection must stay fast and non-blocking, so it never
// calls listener code directly. Instead it submits zero-argument tasks to a
// Dispatcher, which runs them on its own goroutine.
//
// # Ordering
//
// Queue is a single-consumer FIFO: tasks execute in submission order, one at
// a time. Tasks submitted while handling one inbound message are therefore
// delivered in order; no ordering is guaranteed across independent sources
// beyond arrival order.
//
// # Failure isolation
//
// A panicking task is recovered and logged; it never takes down the worker or
// prevents later tasks from running. There is no cancellation: a submitted
// task always runs (unless the queue is stopped before it is picked up, in
// which case Stop drains the queue first).
//
// # Testing
//
// Sync runs every task inline on the submitting goroutine, making tests
// deterministic without timing assumptions.
package dispatch
