//go:build linux

package netio

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

// Line is sent once per newline-terminated record read from a
// LineReader's connection.
type Line struct {
	Text string
}

// Closed is sent once a LineReader's connection reaches EOF or errors.
type Closed struct{}

// LineReader builds a process that reads fd non-blocking, splits the
// byte stream on '\n', and sends one Line per record to notify, ending
// with a Closed message. Grounded on original_source's fs.rs read loop
// and the teacher's bucketed buffer pool (internal/queue/pool.go),
// re-bucketed here via GetBuffer/PutBuffer.
func LineReader(p poller.Poller, fd int, notify process.ID) process.Thunk {
	return process.Func(func(ctx *process.Ctx, first process.Arg) process.Completion {
		reg, err := p.Register(fd, ctx.ID.Uint64(), poller.EventRead)
		if err != nil {
			unix.Close(fd)
			return process.TerminateCompletion(1, fmt.Sprintf("netio: register reader: %v", err))
		}
		defer reg.Close()
		defer unix.Close(fd)

		var pending []byte
		arg := first
		for {
			arg = ctx.Yield(process.IO())
			if arg.Kind != process.ArgMessage {
				continue
			}

			for {
				buf := GetBuffer(bucket4k)
				n, readErr := unix.Read(fd, buf)
				if n > 0 {
					pending = append(pending, buf[:n]...)
				}
				PutBuffer(buf)

				for {
					idx := bytes.IndexByte(pending, '\n')
					if idx < 0 {
						break
					}
					line := string(pending[:idx])
					pending = pending[idx+1:]
					arg = ctx.Yield(process.Send(notify, envelope.Pack(Line{Text: line})))
				}

				if readErr == unix.EAGAIN {
					break
				}
				if readErr != nil || n == 0 {
					arg = ctx.Yield(process.Send(notify, envelope.Pack(Closed{})))
					return process.DoneCompletion
				}
			}
		}
	})
}
