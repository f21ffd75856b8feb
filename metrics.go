package actor

import (
	"sync/atomic"

	"github.com/ehrlich-b/goactor/internal/dispatch"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Metrics tracks scheduling activity for an Engine: spawns, sends,
// sweeps, poller wakeups, and terminations. Adapted from the teacher's
// Metrics (device I/O counters) to the runtime's own units of work.
type Metrics struct {
	Spawns       atomic.Uint64 // Total processes spawned
	Sends        atomic.Uint64 // Total messages enqueued
	Sweeps       atomic.Uint64 // Total ready-queue sweeps
	Wakeups      atomic.Uint64 // Total Wakeup messages emitted by the sleeper, including ones dropped for dead owners
	Terminations atomic.Uint64 // Total Terminate completions observed

	sweepEntriesTotal atomic.Uint64 // Cumulative entries processed across all sweeps
	sweepMax          atomic.Uint64 // Largest single sweep seen
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordSweep(size int) {
	m.Sweeps.Add(1)
	m.sweepEntriesTotal.Add(uint64(size))
	for {
		current := m.sweepMax.Load()
		if uint64(size) <= current {
			break
		}
		if m.sweepMax.CompareAndSwap(current, uint64(size)) {
			break
		}
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics, safe to read
// without further synchronization.
type MetricsSnapshot struct {
	Spawns       uint64
	Sends        uint64
	Sweeps       uint64
	Wakeups      uint64
	Terminations uint64
	AvgSweepSize float64
	MaxSweepSize uint64
}

// Snapshot takes a point-in-time copy of m.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Spawns:       m.Spawns.Load(),
		Sends:        m.Sends.Load(),
		Sweeps:       m.Sweeps.Load(),
		Wakeups:      m.Wakeups.Load(),
		Terminations: m.Terminations.Load(),
		MaxSweepSize: m.sweepMax.Load(),
	}
	if snap.Sweeps > 0 {
		snap.AvgSweepSize = float64(m.sweepEntriesTotal.Load()) / float64(snap.Sweeps)
	}
	return snap
}

// Reset zeroes every counter. Useful for testing.
func (m *Metrics) Reset() {
	m.Spawns.Store(0)
	m.Sends.Store(0)
	m.Sweeps.Store(0)
	m.Wakeups.Store(0)
	m.Terminations.Store(0)
	m.sweepEntriesTotal.Store(0)
	m.sweepMax.Store(0)
}

// metricsProbe adapts a Metrics into a dispatch.Probe, the same role the
// teacher's MetricsObserver plays for Observer: a thin recorder with no
// logic of its own.
type metricsProbe struct {
	m *Metrics
}

var _ dispatch.Probe = (*metricsProbe)(nil)

func (p *metricsProbe) ObserveSpawn(process.ID)  { p.m.Spawns.Add(1) }
func (p *metricsProbe) ObserveSend(process.ID)   { p.m.Sends.Add(1) }
func (p *metricsProbe) ObserveSweep(n int)       { p.m.recordSweep(n) }
func (p *metricsProbe) ObserveWakeup()           { p.m.Wakeups.Add(1) }
func (p *metricsProbe) ObserveTerminate(process.ExitReason) {
	p.m.Terminations.Add(1)
}
