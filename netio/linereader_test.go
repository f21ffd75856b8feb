//go:build linux

package netio

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/goactor/internal/dispatch"
	"github.com/ehrlich-b/goactor/internal/envelope"
	"github.com/ehrlich-b/goactor/internal/poller"
	"github.com/ehrlich-b/goactor/internal/process"
)

// acceptedPair sets up a real, connected TCP socket pair and returns the
// server-side fd (non-blocking, as LineReader expects) plus the client
// conn used to write/close from the test side.
func acceptedPair(t *testing.T) (int, net.Conn) {
	t.Helper()
	lfd, err := listen("127.0.0.1:0")
	require.NoError(t, err)
	defer unix.Close(lfd)
	port, err := boundPort(lfd)
	require.NoError(t, err)

	client, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(port))
	require.NoError(t, err)

	var serverFD int
	for {
		fd, _, acceptErr := acceptOne(lfd)
		if acceptErr == unix.EAGAIN {
			continue
		}
		require.NoError(t, acceptErr)
		serverFD = fd
		break
	}
	return serverFD, client
}

func TestLineReaderSplitsOnNewline(t *testing.T) {
	stub := poller.NewStub()
	defer stub.Close()
	serverFD, client := acceptedPair(t)
	defer client.Close()

	readerID := process.ID{}
	notifyID := process.ID{}
	resumer := LineReader(stub, serverFD, notifyID)(readerID)

	yield, _, ok := resumer.Resume(process.EmptyArg)
	require.True(t, ok)
	require.Equal(t, process.YieldIO, yield.Kind)

	_, err := client.Write([]byte("hello\nworld\n"))
	require.NoError(t, err)
	stub.Push(poller.Event{Owner: readerID.Uint64(), Flags: poller.EventRead})

	yield, _, ok = resumer.Resume(process.MessageArg(envelope.Pack(dispatch.Wakeup{Flags: poller.EventRead})))
	require.True(t, ok)
	require.Equal(t, process.YieldSend, yield.Kind)
	require.Equal(t, notifyID, yield.Target)
	require.Equal(t, Line{Text: "hello"}, envelope.Unpack[Line](yield.Msg))

	yield, _, ok = resumer.Resume(process.EmptyArg)
	require.True(t, ok)
	require.Equal(t, process.YieldSend, yield.Kind)
	require.Equal(t, Line{Text: "world"}, envelope.Unpack[Line](yield.Msg))

	yield, _, ok = resumer.Resume(process.EmptyArg)
	require.True(t, ok)
	require.Equal(t, process.YieldIO, yield.Kind, "no full line pending, re-parks")
}

func TestLineReaderSendsClosedOnEOF(t *testing.T) {
	stub := poller.NewStub()
	defer stub.Close()
	serverFD, client := acceptedPair(t)

	readerID := process.ID{}
	notifyID := process.ID{}
	resumer := LineReader(stub, serverFD, notifyID)(readerID)

	_, _, ok := resumer.Resume(process.EmptyArg)
	require.True(t, ok)

	require.NoError(t, client.Close())
	stub.Push(poller.Event{Owner: readerID.Uint64(), Flags: poller.EventRead | poller.EventHUP})

	yield, completion, ok := resumer.Resume(process.MessageArg(envelope.Pack(dispatch.Wakeup{Flags: poller.EventRead | poller.EventHUP})))
	require.True(t, ok)
	require.Equal(t, process.YieldSend, yield.Kind)
	require.Equal(t, Closed{}, envelope.Unpack[Closed](yield.Msg))

	_, completion, ok = resumer.Resume(process.EmptyArg)
	require.False(t, ok)
	require.Equal(t, process.Done, completion.Kind)
}
