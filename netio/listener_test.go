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

// freeAddr binds an ephemeral port, reads it back, then releases it so a
// Listener under test can bind the same address.
func freeAddr(t *testing.T) string {
	t.Helper()
	fd, err := listen("127.0.0.1:0")
	require.NoError(t, err)
	port, err := boundPort(fd)
	require.NoError(t, err)
	require.NoError(t, unix.Close(fd))
	return "127.0.0.1:" + strconv.Itoa(port)
}

func TestListenerSendsConnectionOnAccept(t *testing.T) {
	stub := poller.NewStub()
	defer stub.Close()
	addr := freeAddr(t)

	listenerID := process.ID{}
	notifyID := process.ID{}
	resumer := Listener(stub, addr, notifyID)(listenerID)

	yield, _, ok := resumer.Resume(process.EmptyArg)
	require.True(t, ok)
	require.Equal(t, process.YieldIO, yield.Kind)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	stub.Push(poller.Event{Owner: listenerID.Uint64(), Flags: poller.EventRead})

	yield, _, ok = resumer.Resume(process.MessageArg(envelope.Pack(dispatch.Wakeup{Flags: poller.EventRead})))
	require.True(t, ok)
	require.Equal(t, process.YieldSend, yield.Kind)
	require.Equal(t, notifyID, yield.Target)

	got := envelope.Unpack[Connection](yield.Msg)
	require.Greater(t, got.FD, 0)
	defer unix.Close(got.FD)

	yield, _, ok = resumer.Resume(process.EmptyArg)
	require.True(t, ok)
	require.Equal(t, process.YieldIO, yield.Kind, "drains to EAGAIN and re-parks after one accept")
}

func TestListenerExitsOnHangup(t *testing.T) {
	stub := poller.NewStub()
	defer stub.Close()
	addr := freeAddr(t)

	listenerID := process.ID{}
	resumer := Listener(stub, addr, process.ID{})(listenerID)

	_, _, ok := resumer.Resume(process.EmptyArg)
	require.True(t, ok)

	_, completion, ok := resumer.Resume(process.MessageArg(envelope.Pack(dispatch.Wakeup{Flags: poller.EventHUP})))
	require.False(t, ok)
	require.Equal(t, process.Done, completion.Kind)
}
