// Command actor-echo is the runnable form of scenario S1: a printer
// process and a test process exchanging two messages before the test
// process terminates the engine.
package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	actor "github.com/ehrlich-b/goactor"
	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/logging"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Foo is the first message T receives; it has no payload.
type Foo struct{}

// Bar carries the value T accumulates before reporting to the printer.
type Bar struct {
	N int
}

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logConfig := &logging.Config{Level: logging.LevelInfo, Output: os.Stderr}
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	engine, err := actor.New(actor.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to start engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	printer := engine.Spawn(process.Func(printerBody))
	test := engine.Spawn(process.Func(testBody(printer)))

	engine.Send(test, envelope.Pack(Foo{}))
	engine.Send(test, envelope.Pack(Bar{N: 42}))

	reason := engine.Run()
	logger.Info("engine stopped", "code", reason.Code, "message", reason.Message)
}

// printerBody prints any String it receives and otherwise idles, the way
// spec.md's S1 printer P is described: "accepting String and printing".
func printerBody(ctx *process.Ctx, first process.Arg) process.Completion {
	arg := first
	for {
		if arg.Kind == process.ArgMessage {
			fmt.Printf("printer: %s\n", envelope.Unpack[string](arg.Message))
		}
		arg = ctx.Yield(process.Empty())
	}
}

// testBody implements T: Foo bumps a counter, Bar(n) accumulates bar += n
// and reports "<bar> bars" to printer, then exits with Terminate(0,"done")
// in place of the original's self-sent Sleep-triggered exit.
func testBody(printer process.ID) process.Body {
	return func(ctx *process.Ctx, first process.Arg) process.Completion {
		var fooCount, bar int
		arg := first
		for {
			if arg.Kind == process.ArgMessage {
				switch arg.Message.Type() {
				case reflect.TypeFor[Foo]():
					fooCount++
				case reflect.TypeFor[Bar]():
					bar += envelope.Unpack[Bar](arg.Message).N
					ctx.Yield(process.Send(printer, envelope.Pack(fmt.Sprintf("%d bars", bar))))
					return process.TerminateCompletion(0, "done")
				}
			}
			arg = ctx.Yield(process.Empty())
		}
	}
}
