// Package actor provides the public API for the single-threaded,
// cooperative actor runtime: an Engine that schedules processes,
// delivers Envelope-carried messages between them, and bridges
// kernel I/O readiness into the same message-passing model via a
// reserved sleeper process.
//
// Processes never block the Engine's own goroutine directly. Instead
// they express suspension as a Yield (see internal/process): send a
// message and keep running, spawn a child, park until a message
// arrives, or park until the kernel reports an fd ready. The Engine
// owns the single goroutine that resumes processes one at a time —
// nothing in this package introduces implicit concurrency beyond what
// process.Func already uses internally to adapt straight-line Go into
// a coroutine.
package actor
