package dispatch

import (
	"errors"

	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/logging"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Wakeup is what the sleeper sends to the owner of an fd the kernel
// reports ready, per spec.md §4.4.
type Wakeup struct {
	Flags poller.EventMask
}

// sleepTick is the resume argument Run() hands the sleeper each time the
// ready queue has emptied; its payload carries no information, the
// sleeper ignores it and calls the poller regardless.
type sleepTick struct{}

// newSleeperThunk builds the reserved sleeper process. It loops: wait on
// p indefinitely, emit one Send per returned event (continuing in place,
// per the Send yield-handling rule), then yield Empty once the batch is
// drained. A single logical "turn" of the sleeper therefore spans several
// Resume calls — one per event plus the final Empty — mirroring how the
// original's generator body issues one coroutine yield per send! call.
func newSleeperThunk(p poller.Poller, logger *logging.Logger) process.Thunk {
	return func(process.ID) process.Resumer {
		return &sleeperResumer{poller: p, logger: logger}
	}
}

type sleeperResumer struct {
	poller poller.Poller
	logger *logging.Logger

	pending   []poller.Event
	needEmpty bool
}

func (s *sleeperResumer) Resume(process.Arg) (process.Yield, process.Completion, bool) {
	if s.needEmpty {
		s.needEmpty = false
		return process.Empty(), process.Completion{}, true
	}

	if len(s.pending) == 0 {
		events, err := s.poller.Wait()
		if err != nil {
			if errors.Is(err, poller.ErrClosed) {
				return process.Yield{}, process.DoneCompletion, false
			}
			s.logger.Error("sleeper: poller wait failed", "error", err)
			return process.Yield{}, process.TerminateCompletion(1, "epoll wait failed"), false
		}
		s.pending = events
	}

	if len(s.pending) == 0 {
		// A spurious wakeup with nothing to report still ends this turn.
		return process.Empty(), process.Completion{}, true
	}

	ev := s.pending[0]
	s.pending = s.pending[1:]
	if len(s.pending) == 0 {
		s.needEmpty = true
	}

	target := process.FromUint64(ev.Owner)
	msg := envelope.Pack(Wakeup{Flags: ev.Flags})
	return process.Send(target, msg), process.Completion{}, true
}
