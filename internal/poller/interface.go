// Package poller wraps the kernel readiness multiplexor (epoll) behind a
// small interface, adapted from the teacher's uring.Ring shape: an
// interface, one real implementation, and a stub used by tests and non-
// Linux builds. Readiness here means "level-triggered epoll", not
// io_uring completions — see DESIGN.md for why the pack's io_uring
// bindings were not a fit for an epoll-style bridge.
package poller

import "sync"

// EventMask describes the readiness conditions a Registration is
// interested in.
type EventMask uint32

const (
	EventRead EventMask = 1 << iota
	EventWrite
	EventHUP
)

// Event is one readiness notification. Owner is the opaque 64-bit tag
// supplied at Register time (a process.ID encoded with ID.Uint64). The
// epoll implementation keeps this tag in its own fd->owner map; the
// kernel event's data field carries the fd, not the tag.
type Event struct {
	Owner uint64
	Flags EventMask
}

// Poller is the thread-local wrapper over the kernel readiness
// multiplexor. It is created once per dispatcher and only ever driven
// from the goroutine running the dispatcher's loop (spec.md §5).
type Poller interface {
	// Register binds fd to the poller with owner as its opaque tag.
	// Closing the returned Registration unregisters fd.
	Register(fd int, owner uint64, events EventMask) (*Registration, error)

	// Wait blocks until at least one registered fd is ready (or the
	// Poller is closed) and returns the batch of events observed.
	Wait() ([]Event, error)

	// Close releases the poller's own resources (e.g. the epoll fd).
	Close() error
}

// Registration binds one file descriptor to a Poller under a given owner
// tag. It releases the binding exactly once, on Close, from any exit
// path — the Go analogue of the original's release-on-drop Registered<F>.
type Registration struct {
	fd     int
	owner  uint64
	once   sync.Once
	unreg  func(fd int) error
	closed error
}

// FD returns the registered file descriptor.
func (r *Registration) FD() int { return r.fd }

// Owner returns the tag this registration was bound under.
func (r *Registration) Owner() uint64 { return r.owner }

// Close unregisters fd. Safe to call more than once; only the first call
// does work.
func (r *Registration) Close() error {
	r.once.Do(func() {
		r.closed = r.unreg(r.fd)
	})
	return r.closed
}
