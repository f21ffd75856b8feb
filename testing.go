package actor

import (
	"sync"

	"github.com/ehrlich-b/goactor/internal/process"
)

// MockProcess is a scripted process.Resumer for testing callers of an
// Engine without spinning up real process.Func bodies. It plays back a
// fixed sequence of Yields (terminated by a Completion) and records
// every Arg it was resumed with, the way the teacher's MockBackend
// records read/write calls for later assertion.
type MockProcess struct {
	mu sync.Mutex

	script []process.Yield
	final  process.Completion
	step   int

	args []process.Arg
}

// NewMockProcess returns a MockProcess that yields each of script in
// order, then completes with final.
func NewMockProcess(final process.Completion, script ...process.Yield) *MockProcess {
	return &MockProcess{script: script, final: final}
}

// Thunk adapts m into a process.Thunk, ignoring the assigned ID.
func (m *MockProcess) Thunk() process.Thunk {
	return func(process.ID) process.Resumer { return m }
}

func (m *MockProcess) Resume(arg process.Arg) (process.Yield, process.Completion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.args = append(m.args, arg)

	if m.step < len(m.script) {
		y := m.script[m.step]
		m.step++
		return y, process.Completion{}, true
	}
	return process.Yield{}, m.final, false
}

// Args returns every Arg the mock was resumed with, in order.
func (m *MockProcess) Args() []process.Arg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]process.Arg, len(m.args))
	copy(out, m.args)
	return out
}

// ResumeCount reports how many times Resume has been called.
func (m *MockProcess) ResumeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.args)
}

var _ process.Resumer = (*MockProcess)(nil)
