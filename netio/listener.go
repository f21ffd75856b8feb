//go:build linux

package netio

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/goactor/internal/dispatch"
	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Connection is sent to a Listener's notify address for every accepted
// client.
type Connection struct {
	FD     int
	Remote string
}

// Listener builds a process that listens on addr, registers the
// listening socket with p, and sends a Connection to notify for each
// accepted client, looping until EAGAIN before parking again. Grounded
// on original_source's net.rs accept loop, expressed here as a
// process.Func body the way spec.md §9 sanctions for straight-line
// handler code.
func Listener(p poller.Poller, addr string, notify process.ID) process.Thunk {
	return process.Func(func(ctx *process.Ctx, first process.Arg) process.Completion {
		fd, err := listen(addr)
		if err != nil {
			return process.TerminateCompletion(1, fmt.Sprintf("netio: %v", err))
		}
		defer unix.Close(fd)

		reg, err := p.Register(fd, ctx.ID.Uint64(), poller.EventRead)
		if err != nil {
			return process.TerminateCompletion(1, fmt.Sprintf("netio: register listener: %v", err))
		}
		defer reg.Close()

		arg := first
		for {
			arg = ctx.Yield(process.IO())
			if arg.Kind != process.ArgMessage {
				continue
			}
			if envelope.Unpack[dispatch.Wakeup](arg.Message).Flags&poller.EventHUP != 0 {
				return process.DoneCompletion
			}

			for {
				connFD, remote, acceptErr := acceptOne(fd)
				if acceptErr == unix.EAGAIN {
					break
				}
				if acceptErr != nil {
					return process.TerminateCompletion(1, fmt.Sprintf("netio: accept: %v", acceptErr))
				}
				arg = ctx.Yield(process.Send(notify, envelope.Pack(Connection{FD: connFD, Remote: remote})))
			}
		}
	})
}
