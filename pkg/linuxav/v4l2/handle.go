//go:build linux

package v4l2

import (
	"fmt"
	"sync/atomic"
	"syscall"
)

// FdSet is a file descriptor set for select-style readiness waiting,
// layout compatible with fd_set from <sys/select.h>. It is a plain value;
// assignment copies the whole set.
type FdSet struct {
	bits [16]int64
}

// Set adds fd to the set.
func (s *FdSet) Set(fd int) {
	s.bits[fd/64] |= 1 << (uint(fd) % 64)
}

// Clear removes fd from the set.
func (s *FdSet) Clear(fd int) {
	s.bits[fd/64] &^= 1 << (uint(fd) % 64)
}

// IsSet reports whether fd is in the set.
func (s *FdSet) IsSet(fd int) bool {
	return s.bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

// Sys returns the set as a *syscall.FdSet for passing to syscall.Select.
func (s *FdSet) Sys() *syscall.FdSet {
	set := &syscall.FdSet{}
	for i, b := range s.bits {
		set.Bits[i] = b
	}
	return set
}

// Handle is the sole owner of one open device descriptor. It is shared,
// reference counted, across every consumer of a Device; the descriptor
// is closed exactly once, when the last reference is released.
//
// A failed close on the last release panics: it happens outside any
// caller's active call frame, and there is no safe way to continue with
// a descriptor in an unknown state.
type Handle struct {
	fd   int
	fds  FdSet
	refs atomic.Int32
}

func newHandle(fd int) *Handle {
	h := &Handle{fd: fd}
	h.fds.Set(fd)
	h.refs.Store(1)
	return h
}

// FD returns the raw file descriptor. It stays valid until the last
// reference to the handle is released.
func (h *Handle) FD() int {
	return h.fd
}

// FdSet returns a copy of the readiness set seeded with the handle's
// descriptor, for use with select-style multiplexing.
func (h *Handle) FdSet() FdSet {
	return h.fds
}

func (h *Handle) acquire() *Handle {
	h.refs.Add(1)
	return h
}

// Release drops one reference. The descriptor is closed when the count
// reaches zero.
func (h *Handle) Release() {
	switch n := h.refs.Add(-1); {
	case n > 0:
		return
	case n < 0:
		panic("v4l2: handle released more often than acquired")
	}
	if err := sysClose(h.fd); err != nil {
		panic(fmt.Sprintf("v4l2: closing fd %d: %v", h.fd, err))
	}
}
