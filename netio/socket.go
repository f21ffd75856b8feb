//go:build linux

package netio

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// listen opens a non-blocking, listening IPv4 TCP socket bound to addr
// ("host:port"; host empty or "0.0.0.0" binds all interfaces). Only
// net.SplitHostPort/net.ParseIP are used from the stdlib net package —
// for address-string parsing only, never for the socket itself, which is
// raw unix syscalls so it composes with Poller the same way the
// teacher's mmap'd queue descriptors compose with its io_uring ring.
func listen(addr string) (int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return -1, fmt.Errorf("netio: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return -1, fmt.Errorf("netio: invalid port %q: %w", portStr, err)
	}

	var ip [4]byte
	if host == "" || host == "0.0.0.0" {
		ip = [4]byte{0, 0, 0, 0}
	} else {
		parsed := net.ParseIP(host).To4()
		if parsed == nil {
			return -1, fmt.Errorf("netio: invalid IPv4 address %q", host)
		}
		copy(ip[:], parsed)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("netio: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netio: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: ip}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netio: bind: %w", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netio: listen: %w", err)
	}
	return fd, nil
}

// boundPort reads back the port the kernel assigned a listening socket
// created with port 0, so tests can bind an ephemeral port.
func boundPort(fd int) (int, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, err
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("netio: unexpected sockaddr type %T", sa)
	}
	return sa4.Port, nil
}

// acceptOne accepts a single pending connection as non-blocking, or
// returns unix.EAGAIN if none is pending.
func acceptOne(fd int) (int, string, error) {
	connFD, sa, err := unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, "", err
	}
	remote := "unknown"
	if sa4, ok := sa.(*unix.SockaddrInet4); ok {
		remote = fmt.Sprintf("%d.%d.%d.%d:%d", sa4.Addr[0], sa4.Addr[1], sa4.Addr[2], sa4.Addr[3], sa4.Port)
	}
	return connFD, remote, nil
}
