package process

// Func adapts straight-line handler code into a Resumer. spec.md §9 lists
// three acceptable coroutine primitives when the host language has no
// native stackless generator: a state machine, a fiber library with
// cooperative hand-off, or native generators. Go has neither a fiber
// library nor native generators built in, so Func builds the fiber-style hand-off directly: the body
// runs on its own goroutine, parked on an unbuffered channel between
// yields, so it behaves as a single-entry/single-exit coroutine even
// though two goroutines exist underneath.
//
// Only one of {the caller of Resume, the body goroutine} is ever
// runnable: Resume blocks until the body yields or completes, and the
// body blocks on Ctx.Yield until Resume is called again. This is the same
// shape as the teacher's primed-channel handshake in queue.Runner.Start
// (a channel carries the one-shot "I'm ready" signal out of a goroutine),
// generalized to a repeating handshake.

// Ctx is the suspension handle passed to a Func body.
type Ctx struct {
	ID     ID
	toBody <-chan Arg
	toCall chan<- funcResult
}

// Yield suspends the body goroutine, delivering y to the dispatcher, and
// blocks until the next Resume supplies a new Arg.
func (c *Ctx) Yield(y Yield) Arg {
	c.toCall <- funcResult{yield: y, yielded: true}
	return <-c.toBody
}

// Body is user handler code written as straight-line Go instead of a
// hand-rolled state machine. first is the Arg the dispatcher primed the
// process with (spec.md §4.2: always EmptyArg on the very first call).
type Body func(ctx *Ctx, first Arg) Completion

type funcResult struct {
	yield   Yield
	done    Completion
	yielded bool
}

type funcResumer struct {
	id      ID
	body    Body
	started bool
	toBody  chan Arg
	toCall  chan funcResult
}

// Func returns a Thunk that builds a goroutine-backed Resumer running body.
func Func(body Body) Thunk {
	return func(id ID) Resumer {
		return &funcResumer{
			id:     id,
			body:   body,
			toBody: make(chan Arg),
			toCall: make(chan funcResult),
		}
	}
}

func (f *funcResumer) Resume(arg Arg) (Yield, Completion, bool) {
	if !f.started {
		f.started = true
		go func() {
			ctx := &Ctx{ID: f.id, toBody: f.toBody, toCall: f.toCall}
			done := f.body(ctx, arg)
			f.toCall <- funcResult{done: done}
		}()
	} else {
		f.toBody <- arg
	}
	r := <-f.toCall
	return r.yield, r.done, r.yielded
}
