//go:build linux

package v4l2

import (
	"syscall"
	"testing"
	"unsafe"
)

// fakeDriver simulates the kernel side of the control protocol by
// substituting the syscall boundary. It counts every ioctl so tests can
// assert that local validation never reaches the kernel.
type fakeDriver struct {
	fd       int
	openErr  error
	openPath string
	openFlag int

	closes   int
	closeErr error

	ioctls int

	caps    v4l2Capability
	ctrls   []v4l2Queryctrl
	values  map[uint32]int32
	menuFor map[uint32]fakeMenu

	// nextErr, when set, fails the next-control cursor query.
	nextErr error

	lastReq      uint
	lastWhich    uint32
	lastControls []v4l2ExtControl

	readData []byte
	readErr  error
	writeN   int
	writeErr error
}

// fakeMenu describes the simulated menu of one control. Indices listed
// in fail are advertised by the range but rejected with EINVAL.
type fakeMenu struct {
	fail map[uint32]bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		fd:      3,
		values:  make(map[uint32]int32),
		menuFor: make(map[uint32]fakeMenu),
	}
}

func (f *fakeDriver) install(t *testing.T) {
	t.Helper()
	origOpen, origClose, origIoctl := sysOpen, sysClose, sysIoctl
	origRead, origWrite := sysRead, sysWrite
	sysOpen = f.open
	sysClose = f.close
	sysIoctl = f.ioctl
	sysRead = f.read
	sysWrite = f.write
	t.Cleanup(func() {
		sysOpen, sysClose, sysIoctl = origOpen, origClose, origIoctl
		sysRead, sysWrite = origRead, origWrite
	})
}

func (f *fakeDriver) open(path string, flags int) (int, error) {
	f.openPath = path
	f.openFlag = flags
	if f.openErr != nil {
		return -1, f.openErr
	}
	return f.fd, nil
}

func (f *fakeDriver) close(fd int) error {
	f.closes++
	return f.closeErr
}

func (f *fakeDriver) read(fd int, p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return copy(p, f.readData), nil
}

func (f *fakeDriver) write(fd int, p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.writeN > 0 {
		return f.writeN, nil
	}
	return len(p), nil
}

func (f *fakeDriver) ioctl(fd int, req uint, arg unsafe.Pointer) error {
	f.ioctls++

	switch req {
	case vidiocQuerycap:
		*(*v4l2Capability)(arg) = f.caps
		return nil

	case vidiocQueryctrl:
		q := (*v4l2Queryctrl)(arg)
		if q.id&(ctrlFlagNextCtrl|ctrlFlagNextCompound) != 0 {
			if f.nextErr != nil {
				return f.nextErr
			}
			base := q.id &^ uint32(ctrlFlagNextCtrl|ctrlFlagNextCompound)
			for _, c := range f.ctrls {
				if c.id > base {
					*q = c
					return nil
				}
			}
			return syscall.EINVAL
		}
		for _, c := range f.ctrls {
			if c.id == q.id {
				*q = c
				return nil
			}
		}
		return syscall.EINVAL

	case vidiocQuerymenu:
		m := (*v4l2Querymenu)(arg)
		menu, ok := f.menuFor[m.id]
		if !ok || menu.fail[m.index] {
			return syscall.EINVAL
		}
		var typ uint32
		for _, c := range f.ctrls {
			if c.id == m.id {
				typ = c.typ
			}
		}
		m.union = [32]byte{}
		if typ == uint32(CtrlTypeIntegerMenu) {
			nativeEndian.PutUint64(m.union[:8], uint64(1000+m.index))
		} else {
			copy(m.union[:], "item"+string(rune('0'+m.index)))
		}
		return nil

	case vidiocGCtrl:
		c := (*v4l2Control)(arg)
		v, ok := f.values[c.id]
		if !ok {
			return syscall.EINVAL
		}
		c.value = v
		return nil

	case vidiocSExtCtrls, vidiocTryExtCtrls:
		xcs := (*v4l2ExtControls)(arg)
		f.lastReq = req
		f.lastWhich = xcs.which
		list := unsafe.Slice(*(**v4l2ExtControl)(unsafe.Pointer(&xcs.controls)), int(xcs.count))
		f.lastControls = append([]v4l2ExtControl(nil), list...)
		return nil
	}

	return syscall.ENOTTY
}

// openDevice opens a device against the fake and fails the test on
// error.
func openDevice(t *testing.T, f *fakeDriver) *Device {
	t.Helper()
	f.install(t)
	dev, err := New(0)
	if err != nil {
		t.Fatalf("New(0) failed: %v", err)
	}
	return dev
}

func qctrl(id uint32, typ CtrlType, name string, minimum, maximum, step, def int32) v4l2Queryctrl {
	q := v4l2Queryctrl{
		id:           id,
		typ:          uint32(typ),
		minimum:      minimum,
		maximum:      maximum,
		step:         step,
		defaultValue: def,
	}
	copy(q.name[:], name)
	return q
}
