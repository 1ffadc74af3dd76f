//go:build linux && arm && !arm64

package v4l2

import "unsafe"

// Compile-time struct size assertion for the 32-bit layout.
var _ [24]byte = [unsafe.Sizeof(v4l2ExtControls{})]byte{}

// IOCTL codes whose request size depends on pointer width.
// v4l2_ext_controls is 24 bytes on 32-bit ARM (vs 32 on 64-bit).
const (
	vidiocGExtCtrls   = 0xc0185647 // VIDIOC_G_EXT_CTRLS
	vidiocSExtCtrls   = 0xc0185648 // VIDIOC_S_EXT_CTRLS
	vidiocTryExtCtrls = 0xc0185649 // VIDIOC_TRY_EXT_CTRLS
)

// v4l2ExtControls has size 24 bytes on 32-bit ARM.
type v4l2ExtControls struct {
	which     uint32  // offset 0 (union with ctrl_class)
	count     uint32  // offset 4
	errorIdx  uint32  // offset 8
	requestFd int32   // offset 12
	reserved  uint32  // offset 16
	controls  uintptr // offset 20
}
