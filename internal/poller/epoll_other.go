//go:build !linux

package poller

import "fmt"

// New is unavailable outside Linux — epoll is a Linux syscall. Callers
// that need a Poller on other platforms (and all tests, regardless of
// platform) use NewStub instead.
func New() (Poller, error) {
	return nil, fmt.Errorf("poller: epoll is only available on linux")
}
