//go:build linux && (amd64 || arm64)

package v4l2

import "unsafe"

// Compile-time struct size assertion for the 64-bit layout.
var _ [32]byte = [unsafe.Sizeof(v4l2ExtControls{})]byte{}

// IOCTL codes whose request size depends on pointer width.
const (
	vidiocGExtCtrls   = 0xc0205647 // VIDIOC_G_EXT_CTRLS
	vidiocSExtCtrls   = 0xc0205648 // VIDIOC_S_EXT_CTRLS
	vidiocTryExtCtrls = 0xc0205649 // VIDIOC_TRY_EXT_CTRLS
)

// v4l2ExtControls has size 32 bytes on 64-bit architectures.
type v4l2ExtControls struct {
	which     uint32  // offset 0 (union with ctrl_class)
	count     uint32  // offset 4
	errorIdx  uint32  // offset 8
	requestFd int32   // offset 12
	reserved  uint32  // offset 16
	_         [4]byte // padding before the pointer
	controls  uintptr // offset 24
}
