// Package netio provides TCP listener and line-framed reader processes —
// collaborators external to the core dispatcher that exercise the
// poller for real kernel I/O, the way spec.md §6 describes.
package netio

import "sync"

// Buffer size thresholds. Re-bucketed from the teacher's 128KiB-1MiB
// block-I/O range down to sizes that fit a line-oriented network
// protocol: most reads fit in one 4KiB chunk, 64KiB covers a client that
// pipelines many lines before a readiness event is even delivered.
const (
	bucket4k  = 4 * 1024
	bucket16k = 16 * 1024
	bucket64k = 64 * 1024
)

// bufferPool mirrors the teacher's pointer-to-slice sync.Pool pattern in
// internal/queue/pool.go, avoiding the interface-boxing allocation a
// plain sync.Pool of []byte would incur on every Get/Put.
var bufferPool = struct {
	p4k, p16k, p64k sync.Pool
}{
	p4k:  sync.Pool{New: func() any { b := make([]byte, bucket4k); return &b }},
	p16k: sync.Pool{New: func() any { b := make([]byte, bucket16k); return &b }},
	p64k: sync.Pool{New: func() any { b := make([]byte, bucket64k); return &b }},
}

// GetBuffer returns a pooled buffer of at least size bytes. The caller
// must return it via PutBuffer.
func GetBuffer(size int) []byte {
	switch {
	case size <= bucket4k:
		return (*bufferPool.p4k.Get().(*[]byte))[:size]
	case size <= bucket16k:
		return (*bufferPool.p16k.Get().(*[]byte))[:size]
	case size > bucket64k:
		return make([]byte, size)
	default:
		return (*bufferPool.p64k.Get().(*[]byte))[:size]
	}
}

// PutBuffer returns buf to the pool matching its capacity. Buffers with
// a non-standard capacity (e.g. grown past bucket64k) are dropped rather
// than pooled.
func PutBuffer(buf []byte) {
	c := cap(buf)
	buf = buf[:c]
	switch c {
	case bucket4k:
		bufferPool.p4k.Put(&buf)
	case bucket16k:
		bufferPool.p16k.Put(&buf)
	case bucket64k:
		bufferPool.p64k.Put(&buf)
	}
}
