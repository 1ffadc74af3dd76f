//go:build linux

package v4l2

import (
	"syscall"
	"unsafe"
)

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func open(path string, flags int) (int, error) {
	return syscall.Open(path, flags, 0)
}

// The syscall boundary is held in variables so tests can substitute a
// simulated driver. Production code never reassigns these.
var (
	sysOpen  = open
	sysClose = syscall.Close
	sysIoctl = ioctl
	sysRead  = syscall.Read
	sysWrite = syscall.Write
)
