//go:build linux

package v4l2

import (
	"bytes"
	"encoding/binary"
	"unsafe"
)

// Kernel structs whose layout is identical on every supported
// architecture. Sizes are asserted at compile time; a build failure here
// means the layout no longer matches <linux/videodev2.h>.
var (
	_ [104]byte = [unsafe.Sizeof(v4l2Capability{})]byte{}
	_ [68]byte  = [unsafe.Sizeof(v4l2Queryctrl{})]byte{}
	_ [44]byte  = [unsafe.Sizeof(v4l2Querymenu{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(v4l2Control{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2ExtControl{})]byte{}
)

// IOCTL codes that do not depend on pointer width.
const (
	vidiocQuerycap  = 0x80685600 // VIDIOC_QUERYCAP
	vidiocQueryctrl = 0xc0445624 // VIDIOC_QUERYCTRL
	vidiocQuerymenu = 0xc02c5625 // VIDIOC_QUERYMENU
	vidiocGCtrl     = 0xc008561b // VIDIOC_G_CTRL
)

// Enumeration cursor flags for VIDIOC_QUERYCTRL.
const (
	ctrlFlagNextCtrl     = 0x80000000
	ctrlFlagNextCompound = 0x40000000
)

// classMask extracts the control class from the upper 16 bits of an id.
const classMask = 0xFFFF0000

// v4l2Capability has size 104 bytes.
type v4l2Capability struct {
	driver       [16]byte  // offset 0
	card         [32]byte  // offset 16
	busInfo      [32]byte  // offset 48
	version      uint32    // offset 80
	capabilities uint32    // offset 84
	deviceCaps   uint32    // offset 88
	reserved     [3]uint32 // offset 92
}

// v4l2Queryctrl has size 68 bytes.
type v4l2Queryctrl struct {
	id           uint32    // offset 0
	typ          uint32    // offset 4
	name         [32]byte  // offset 8
	minimum      int32     // offset 40
	maximum      int32     // offset 44
	step         int32     // offset 48
	defaultValue int32     // offset 52
	flags        uint32    // offset 56
	reserved     [2]uint32 // offset 60
}

// v4l2Querymenu has size 44 bytes (packed in the kernel headers).
// The union field holds a NUL-terminated name for menu controls and a
// native-endian int64 value for integer menu controls.
type v4l2Querymenu struct {
	id       uint32   // offset 0
	index    uint32   // offset 4
	union    [32]byte // offset 8
	reserved uint32   // offset 40
}

// v4l2Control has size 8 bytes.
type v4l2Control struct {
	id    uint32
	value int32
}

// v4l2ExtControl has size 20 bytes (packed). The union at offset 12
// holds value/value64 inline or a pointer for string and compound
// payloads; writing through a byte array sidesteps the packed layout,
// which Go structs cannot express with a real pointer field.
type v4l2ExtControl struct {
	id       uint32   // offset 0
	size     uint32   // offset 4
	reserved uint32   // offset 8
	union    [8]byte  // offset 12
}

func (c *v4l2ExtControl) setValue64(v int64) {
	nativeEndian.PutUint64(c.union[:], uint64(v))
}

func (c *v4l2ExtControl) setPointer(p unsafe.Pointer) {
	nativeEndian.PutUint64(c.union[:], uint64(uintptr(p)))
}

// nativeEndian is the host byte order, detected once at startup.
var nativeEndian binary.ByteOrder

func init() {
	probe := uint16(1)
	if (*[2]byte)(unsafe.Pointer(&probe))[0] == 1 {
		nativeEndian = binary.LittleEndian
	} else {
		nativeEndian = binary.BigEndian
	}
}

// cstr converts a NUL-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
