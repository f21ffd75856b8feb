// Package dispatch implements the scheduler, message transport, and
// process lifecycle machinery described in spec.md §4.3–§4.5: the ready
// queue, the Send/Spawn/Io/Empty yield-handling rules, and the run loop
// that drives everything including the reserved sleeper process.
package dispatch

import (
	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/logging"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Probe is an optional metrics hook, adapted from the teacher's
// interfaces.Observer: implementations must tolerate being called from
// the single goroutine driving Run (no concurrency to guard against, but
// no guarantee it's always the same goroutine across dispatcher
// instances either).
type Probe interface {
	ObserveSpawn(id process.ID)
	ObserveSend(to process.ID)
	ObserveSweep(size int)
	ObserveWakeup()
	ObserveTerminate(reason process.ExitReason)
}

type nullProbe struct{}

func (nullProbe) ObserveSpawn(process.ID)             {}
func (nullProbe) ObserveSend(process.ID)              {}
func (nullProbe) ObserveSweep(int)                    {}
func (nullProbe) ObserveWakeup()                      {}
func (nullProbe) ObserveTerminate(process.ExitReason) {}

type readyEntry struct {
	id  process.ID
	arg process.Arg
}

// Dispatcher owns every Process, the ready queue, and the sleeper. It
// implements spec.md §4.3 in full: New/Spawn/Send/Run.
type Dispatcher struct {
	table *process.Table

	// ready is the queue being filled for the *next* sweep; spare is a
	// recycled backing array for the sweep after that. Swapped each
	// sweep instead of reallocating, the same "avoid hot-path
	// allocations" idiom the teacher applies to I/O buffers
	// (internal/queue/pool.go) applied here to queue slices.
	ready []readyEntry
	spare []readyEntry

	exit *process.ExitReason

	sleeperID process.ID

	logger *logging.Logger
	probe  Probe
}

// New creates an empty Dispatcher and spawns its sleeper against p.
func New(p poller.Poller, logger *logging.Logger, probe Probe) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if probe == nil {
		probe = nullProbe{}
	}
	d := &Dispatcher{
		table:  process.NewTable(),
		logger: logger,
		probe:  probe,
	}
	sleeperProc := d.table.Insert(newSleeperThunk(p, logger))
	d.sleeperID = sleeperProc.ID
	// Unlike a regular Spawn, the sleeper is deliberately left unprimed:
	// its first Resume call blocks on the poller, so it must not run
	// until Run's outer loop invokes it — priming it here would block
	// New itself before the caller ever gets to schedule real work. It
	// is also never scheduled through the generic ready queue (spec.md
	// §4.4: "the dispatcher schedules the sleeper exactly when the ready
	// queue is empty"); its Empty yields must not requeue it, or it
	// would compete with regular work for epoll_wait's blocking call.
	// See resumeSleeper and DESIGN.md for the full rationale.
	return d
}

// Spawn allocates a ProcessId, builds the process from thunk, and primes
// it with one Resume(EmptyArg), per spec.md §4.3.
func (d *Dispatcher) Spawn(thunk process.Thunk) process.ID {
	proc := d.table.Insert(thunk)
	d.probe.ObserveSpawn(proc.ID)
	d.runOne(proc.ID, process.EmptyArg)
	return proc.ID
}

// Send appends (addr, Message(env)) to the tail of the ready queue.
// Delivery to a dead or unknown address is a silent drop (spec.md §4.6).
func (d *Dispatcher) Send(addr process.ID, env envelope.Envelope) {
	if d.table.Get(addr) == nil {
		d.logger.Debug("send: address not found, dropping", "addr", addr.String())
		return
	}
	d.ready = append(d.ready, readyEntry{id: addr, arg: process.MessageArg(env)})
	d.probe.ObserveSend(addr)
}

// Run drives the loop until a Terminate is observed or no sleeper remains
// to make further progress possible (spec.md §4.5).
func (d *Dispatcher) Run() process.ExitReason {
	for {
		if reason, exited := d.Step(); exited {
			return reason
		}
	}
}

// Step drains the ready queue, then — if nothing terminated the program —
// resumes the sleeper exactly once (which may block in Wait) and drains
// whatever that wakeup enqueued. Run is just this called in a loop; Step
// is exported separately so a caller feeding a poller.Stub can pump one
// epoch at a time instead of calling the blocking Run.
func (d *Dispatcher) Step() (process.ExitReason, bool) {
	if reason, exited := d.Drain(); exited {
		return reason, true
	}

	if d.table.Get(d.sleeperID) == nil {
		return process.ExitReason{Code: 0, Message: "no sleeper"}, true
	}
	d.resumeSleeper(process.MessageArg(envelope.Pack(sleepTick{})))

	return d.Drain()
}

// Drain resumes ready entries in sweeps without ever touching the
// sleeper, stopping once the queue is empty or has nothing left but
// processes re-parked on Empty (spec.md's busy-wheel Empty is requeued at
// the *next* epoch, not parked, so a perpetual idler would otherwise keep
// len(d.ready) > 0 forever and starve the sleeper — see
// hasProductiveWork). A pending Terminate is reported at that point, so
// messages sent during the terminating sweep are still delivered first.
// Useful for drivers (and tests) that push synthetic readiness directly
// via Send rather than through a real poller wakeup.
func (d *Dispatcher) Drain() (process.ExitReason, bool) {
	for len(d.ready) > 0 {
		d.sweep()
		if !d.hasProductiveWork() {
			break
		}
	}
	if d.exit != nil {
		return *d.exit, true
	}
	return process.ExitReason{}, false
}

// hasProductiveWork reports whether the ready queue holds anything but
// Empty-requeued entries: a real message delivery or a freshly spawned
// process. A queue containing only Empty re-parks can spin forever
// without the sleeper ever contributing an event, so Drain treats that
// as "nothing left to do this epoch" and returns control to Step.
func (d *Dispatcher) hasProductiveWork() bool {
	for _, entry := range d.ready {
		if entry.arg.Kind != process.ArgEmpty {
			return true
		}
	}
	return false
}

// sweep takes a snapshot of the ready queue and resumes each entry in
// FIFO order, recycling the previous snapshot's backing array for the
// sweep after next.
func (d *Dispatcher) sweep() {
	batch := d.ready
	d.ready = d.spare[:0]
	d.probe.ObserveSweep(len(batch))

	for _, entry := range batch {
		d.runOne(entry.id, entry.arg)
	}

	d.spare = batch[:0]
}

// runOne resumes id with arg and keeps resuming it in place for as long
// as it yields Send or Spawn, per spec.md §4.3. It stops — without
// requeuing — on Io, and requeues at the ready queue's tail on Empty.
// Entries whose process has already died (spec.md Invariant 1) are
// silently dropped.
func (d *Dispatcher) runOne(id process.ID, arg process.Arg) {
	for {
		proc := d.table.Get(id)
		if proc == nil {
			return
		}

		yield, completion, ok := proc.Body.Resume(arg)
		if !ok {
			d.finish(id, completion)
			return
		}

		switch yield.Kind {
		case process.YieldSend:
			d.Send(yield.Target, yield.Msg)
			arg = process.EmptyArg
		case process.YieldSpawn:
			arg = process.SpawnedArg(d.Spawn(yield.Spawn))
		case process.YieldEmpty:
			d.ready = append(d.ready, readyEntry{id: id, arg: process.EmptyArg})
			return
		case process.YieldIO:
			return
		}
	}
}

// resumeSleeper is runOne's sleeper-only twin: it never requeues on
// Empty, since the sleeper's scheduling is owned entirely by Run's outer
// loop rather than the shared ready queue.
func (d *Dispatcher) resumeSleeper(arg process.Arg) {
	for {
		proc := d.table.Get(d.sleeperID)
		if proc == nil {
			return
		}

		yield, completion, ok := proc.Body.Resume(arg)
		if !ok {
			d.finish(d.sleeperID, completion)
			return
		}

		switch yield.Kind {
		case process.YieldSend:
			d.probe.ObserveWakeup()
			d.Send(yield.Target, yield.Msg)
			arg = process.EmptyArg
		case process.YieldEmpty, process.YieldIO:
			return
		case process.YieldSpawn:
			// Not part of the sleeper's contract, but handled for
			// completeness rather than silently dropping a spawn.
			arg = process.SpawnedArg(d.Spawn(yield.Spawn))
		}
	}
}

func (d *Dispatcher) finish(id process.ID, completion process.Completion) {
	d.table.Remove(id)
	if completion.Kind == process.Terminate {
		reason := completion.Reason
		d.exit = &reason
		d.probe.ObserveTerminate(reason)
		d.logger.Debug("terminate requested", "code", reason.Code, "message", reason.Message)
	}
}

// Alive reports whether id still has a live process — exported for tests
// and for collaborators (netio) that want to assert their own cleanup.
func (d *Dispatcher) Alive(id process.ID) bool {
	return d.table.Get(id) != nil
}

// Len reports the number of live processes, including the sleeper.
func (d *Dispatcher) Len() int {
	return d.table.Len()
}
