// Package process defines the coroutine abstraction the dispatcher schedules:
// process identity (ID), the suspended-computation interface (Resumer), and
// the small tagged structs exchanged across a resumption (Arg, Yield,
// Completion).
package process

import (
	"fmt"

	"github.com/ehrlich-b/goactor/internal/envelope"
)

// ID identifies a process. It packs a slot index and a generation counter
// so that a stale ID (one whose slot has since been reused by a different
// process) decodes to "no such process" instead of aliasing a live one.
type ID struct {
	slot uint32
	gen  uint32
}

// Uint64 encodes ID as an opaque 64-bit tag, suitable for the `data` field
// of a kernel readiness event.
func (id ID) Uint64() uint64 {
	return uint64(id.gen)<<32 | uint64(id.slot)
}

// FromUint64 decodes a tag produced by Uint64.
func FromUint64(v uint64) ID {
	return ID{slot: uint32(v), gen: uint32(v >> 32)}
}

func (id ID) String() string {
	return fmt.Sprintf("pid(%d.%d)", id.slot, id.gen)
}

// IsZero reports whether id is the zero value (never a valid allocated id,
// since Table starts generations at 1).
func (id ID) IsZero() bool { return id.gen == 0 && id.slot == 0 }

// State is the externally-observable lifecycle stage of a Process.
type State int

const (
	Ready State = iota
	Parked
	Dead
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Parked:
		return "parked"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// ArgKind tags the payload carried by Arg.
type ArgKind int

const (
	ArgEmpty ArgKind = iota
	ArgMessage
	ArgSpawned
)

// Arg is the value a Process receives on resumption.
type Arg struct {
	Kind    ArgKind
	Message envelope.Envelope
	Spawned ID
}

// EmptyArg is the zero-payload resume argument.
var EmptyArg = Arg{Kind: ArgEmpty}

// MessageArg wraps an envelope as a resume argument.
func MessageArg(e envelope.Envelope) Arg { return Arg{Kind: ArgMessage, Message: e} }

// SpawnedArg wraps a freshly spawned id as a resume argument.
func SpawnedArg(id ID) Arg { return Arg{Kind: ArgSpawned, Spawned: id} }

// YieldKind tags the payload carried by Yield.
type YieldKind int

const (
	YieldEmpty YieldKind = iota
	YieldSend
	YieldSpawn
	YieldIO
)

// Thunk constructs a Resumer once a Process has been allocated an ID.
type Thunk func(ID) Resumer

// Yield is the value a Process produces on suspension.
type Yield struct {
	Kind   YieldKind
	Target ID
	Msg    envelope.Envelope
	Spawn  Thunk
}

// Send builds a Yield that asks the dispatcher to route Msg to target and
// then continue resuming the sender in place.
func Send(target ID, msg envelope.Envelope) Yield {
	return Yield{Kind: YieldSend, Target: target, Msg: msg}
}

// SpawnYield builds a Yield that asks the dispatcher to spawn thunk and
// resume the caller with the new id as ArgSpawned.
func SpawnYield(thunk Thunk) Yield {
	return Yield{Kind: YieldSpawn, Spawn: thunk}
}

// Empty builds the "nothing to do, re-enqueue me" Yield.
func Empty() Yield { return Yield{Kind: YieldEmpty} }

// IO builds the "park me until a Send or Wakeup arrives" Yield.
func IO() Yield { return Yield{Kind: YieldIO} }

// ExitReason explains why Run returned.
type ExitReason struct {
	Code    int
	Message string
}

func (r ExitReason) String() string {
	return fmt.Sprintf("exit(%d): %s", r.Code, r.Message)
}

// CompletionKind tags the payload carried by Completion.
type CompletionKind int

const (
	Done CompletionKind = iota
	Terminate
)

// Completion is returned by a Resumer in place of a Yield when it is
// finished.
type Completion struct {
	Kind   CompletionKind
	Reason ExitReason
}

// DoneCompletion is the "process finished normally" completion.
var DoneCompletion = Completion{Kind: Done}

// TerminateCompletion asks the dispatcher to stop the whole program once
// the ready queue settles.
func TerminateCompletion(code int, msg string) Completion {
	return Completion{Kind: Terminate, Reason: ExitReason{Code: code, Message: msg}}
}

// Resumer is a suspended computation. Resume is single-entry: the caller
// passes exactly one Arg and receives exactly one of (Yield, ok=true) or
// (Completion, ok=false). Implementations must not touch any state other
// than their own between calls — the dispatcher guarantees no two Resumers
// run concurrently, but it does not guarantee which goroutine calls Resume.
type Resumer interface {
	Resume(Arg) (Yield, Completion, bool)
}

// Process is the dispatcher's private handle on a Resumer plus its
// lifecycle state. Never addressed by reference: callers only ever hold
// an ID.
type Process struct {
	ID    ID
	Body  Resumer
	State State
}

// New constructs a Process in the Ready state.
func New(id ID, body Resumer) *Process {
	return &Process{ID: id, Body: body, State: Ready}
}
