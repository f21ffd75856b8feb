// Package integration exercises the engine end to end, the way the
// teacher's test/ directory drives a whole device rather than one
// package in isolation.
package integration

import (
	"reflect"
	"testing"

	actor "github.com/ehrlich-b/goactor"
	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

type echoFoo struct{}

type echoBar struct {
	N int
}

// TestTwoMessageEcho is scenario S1: T accumulates Bar.N across messages
// and reports the sum to a printer process before terminating the
// engine.
func TestTwoMessageEcho(t *testing.T) {
	stub := poller.NewStub()
	defer stub.Close()

	engine, err := actor.New(actor.Options{Poller: stub})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer engine.Close()

	var printed string
	printer := engine.Spawn(process.Func(func(ctx *process.Ctx, first process.Arg) process.Completion {
		arg := first
		for {
			if arg.Kind == process.ArgMessage {
				printed = envelope.Unpack[string](arg.Message)
			}
			arg = ctx.Yield(process.Empty())
		}
	}))

	test := engine.Spawn(process.Func(func(ctx *process.Ctx, first process.Arg) process.Completion {
		var bar int
		arg := first
		for {
			if arg.Kind == process.ArgMessage {
				switch arg.Message.Type() {
				case reflect.TypeFor[echoFoo]():
					// no-op counter bump, mirrors spec.md's "T on Foo increments any"
				case reflect.TypeFor[echoBar]():
					bar += envelope.Unpack[echoBar](arg.Message).N
					ctx.Yield(process.Send(printer, envelope.Pack("42 bars")))
					return process.TerminateCompletion(0, "done")
				}
			}
			arg = ctx.Yield(process.Empty())
		}
	}))

	engine.Send(test, envelope.Pack(echoFoo{}))
	engine.Send(test, envelope.Pack(echoBar{N: 42}))

	reason := engine.Run()
	if reason.Code != 0 || reason.Message != "done" {
		t.Fatalf("unexpected exit reason: %+v", reason)
	}
	if printed != "42 bars" {
		t.Errorf("expected printer to receive %q, got %q", "42 bars", printed)
	}
}
