package actor

import (
	"github.com/ehrlich-b/goactor/internal/dispatch"
	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/logging"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Options configures an Engine the way the teacher's Options configures
// CreateAndServe: optional collaborators, defaulted when left zero.
type Options struct {
	// Logger receives debug/error output from the dispatcher and
	// poller. Defaults to logging.Default().
	Logger *logging.Logger

	// Metrics, when non-nil, is populated with scheduling counters as
	// the Engine runs.
	Metrics *Metrics

	// Poller backs the reserved sleeper process. Defaults to a real
	// epoll instance via poller.New(), which only succeeds on Linux.
	// Tests typically supply a *poller.Stub here instead.
	Poller poller.Poller
}

// Engine is the public runtime: one Dispatcher plus the collaborators
// configured via Options.
type Engine struct {
	dispatcher *dispatch.Dispatcher
	metrics    *Metrics
	poller     poller.Poller
}

// New builds an Engine and spawns its reserved sleeper process.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	p := opts.Poller
	if p == nil {
		realPoller, err := poller.New()
		if err != nil {
			return nil, WrapError("New", err)
		}
		p = realPoller
	}

	var probe dispatch.Probe
	if opts.Metrics != nil {
		probe = &metricsProbe{m: opts.Metrics}
	}

	return &Engine{
		dispatcher: dispatch.New(p, logger, probe),
		metrics:    opts.Metrics,
		poller:     p,
	}, nil
}

// Spawn allocates a new process from thunk and returns its address.
func (e *Engine) Spawn(thunk process.Thunk) process.ID {
	return e.dispatcher.Spawn(thunk)
}

// Send delivers env to addr. Delivery to a dead or unknown address is a
// silent drop (spec.md §4.6).
func (e *Engine) Send(addr process.ID, env envelope.Envelope) {
	e.dispatcher.Send(addr, env)
}

// Run drives the scheduler until a process yields a Terminate or the
// sleeper itself can no longer make progress.
func (e *Engine) Run() process.ExitReason {
	return e.dispatcher.Run()
}

// Metrics returns the Metrics configured via Options, or nil if none was
// supplied.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Alive reports whether addr still has a live process.
func (e *Engine) Alive(addr process.ID) bool {
	return e.dispatcher.Alive(addr)
}

// Drain resumes every currently-ready process to quiescence without
// touching the sleeper, returning the exit reason if a Terminate is
// pending once the drain stops. Intended for callers that push synthetic readiness
// (e.g. via a poller.Stub) and want to pump the engine one step at a
// time instead of calling the blocking Run.
func (e *Engine) Drain() (process.ExitReason, bool) {
	return e.dispatcher.Drain()
}

// Step runs one epoch: drain the ready queue, then resume the sleeper
// once (which observes whatever was pushed to the configured Poller) and
// drain again. Useful alongside a poller.Stub to pump the engine forward
// one synthetic wakeup at a time.
func (e *Engine) Step() (process.ExitReason, bool) {
	return e.dispatcher.Step()
}

// Close releases the underlying poller. Not safe to call concurrently
// with Run.
func (e *Engine) Close() error {
	if e.poller == nil {
		return nil
	}
	return e.poller.Close()
}
