//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"syscall"
	"unsafe"
)

// Errors detected locally, before any kernel call is issued.
var (
	ErrEmptyBatch      = errors.New("v4l2: control batch is empty")
	ErrMixedClass      = errors.New("v4l2: all controls in a batch must share one class")
	ErrUnsupportedType = errors.New("v4l2: unsupported control type")
)

// Device is a Linux capture device. It owns a shared reference to the
// underlying Handle; every method requires the device to still be open.
//
// The device performs no internal locking. Concurrent callers sharing
// one Device must serialize overlapping control, capability and I/O
// calls themselves; the only guarantee is that the descriptor is not
// closed while any handle reference remains.
type Device struct {
	handle *Handle
}

// New opens the capture device with the given zero-based index.
// Devices are enumerated by the system, so index 0 is the first device
// the system got to know about.
func New(index int) (*Device, error) {
	return WithPath("/dev/video" + strconv.Itoa(index))
}

// WithPath opens the capture device at an explicit path, e.g.
// "/dev/video0". The node is opened read-write and non-blocking.
func WithPath(path string) (*Device, error) {
	fd, err := sysOpen(path, syscall.O_RDWR|syscall.O_NONBLOCK)
	if err != nil {
		return nil, err
	}
	if fd < 0 {
		return nil, syscall.EBADF
	}
	return &Device{handle: newHandle(fd)}, nil
}

// Handle acquires and returns a reference to the raw device handle.
// The caller owns the returned reference and must pair it with a
// Release call.
func (d *Device) Handle() *Handle {
	return d.handle.acquire()
}

// Close releases the device's own handle reference. The descriptor is
// closed once every outstanding Handle reference has been released too.
func (d *Device) Close() {
	d.handle.Release()
}

// QueryCaps returns the framework-defined device information such as
// card, driver and capability bits.
func (d *Device) QueryCaps() (Capabilities, error) {
	var q v4l2Capability
	if err := sysIoctl(d.handle.fd, vidiocQuerycap, unsafe.Pointer(&q)); err != nil {
		return Capabilities{}, err
	}
	return capabilitiesFromQuerycap(&q), nil
}

// QueryControls returns every control the device supports, in driver
// traversal order, each fully described including menu items where
// applicable. A device without any controls yields an empty, non-error
// result.
func (d *Device) QueryControls() ([]Description, error) {
	controls := []Description{}

	var q v4l2Queryctrl
	for {
		q.id |= ctrlFlagNextCtrl | ctrlFlagNextCompound
		if err := sysIoctl(d.handle.fd, vidiocQueryctrl, unsafe.Pointer(&q)); err != nil {
			if !errors.Is(err, syscall.EINVAL) {
				return nil, err
			}
			if len(controls) == 0 {
				// EINVAL on the first cursor advance: the device
				// advertises no controls at all.
				return controls, nil
			}
			break
		}

		// A successful query rewrites q.id to the control's real id,
		// which is also the cursor for the next round.
		desc := descriptionFromQueryctrl(&q)
		if desc.Type == CtrlTypeMenu || desc.Type == CtrlTypeIntegerMenu {
			desc.Items = d.queryMenuItems(&q)
		}
		controls = append(controls, desc)
	}

	return controls, nil
}

// queryMenuItems enumerates the items of a menu control by stepping the
// advertised index range. Failing indices are skipped: the V4L2 docs
// allow VIDIOC_QUERYMENU to return EINVAL for indices between minimum
// and maximum that the driver does not actually support, and Logitech
// webcams are known to do exactly that.
func (d *Device) queryMenuItems(q *v4l2Queryctrl) []MenuItem {
	items := []MenuItem{}
	if q.step <= 0 {
		// A zero or negative step from a misbehaving driver would stall
		// the scan; report the control without items instead.
		return items
	}

	var m v4l2Querymenu
	m.id = q.id
	for i := int64(q.minimum); i <= int64(q.maximum); i += int64(q.step) {
		m.index = uint32(i)
		if err := sysIoctl(d.handle.fd, vidiocQuerymenu, unsafe.Pointer(&m)); err != nil {
			continue
		}
		items = append(items, menuItemFromQuerymenu(CtrlType(q.typ), &m))
	}
	return items
}

// Control returns the current value of the control with the given id.
// The control is first described to learn its type; only Integer,
// Integer64 and Boolean controls can be fetched this way. A Boolean
// control maps to true only for the raw value 1.
func (d *Device) Control(id uint32) (Control, error) {
	var q v4l2Queryctrl
	q.id = id
	if err := sysIoctl(d.handle.fd, vidiocQueryctrl, unsafe.Pointer(&q)); err != nil {
		return Control{}, err
	}
	desc := descriptionFromQueryctrl(&q)

	var c v4l2Control
	c.id = id
	if err := sysIoctl(d.handle.fd, vidiocGCtrl, unsafe.Pointer(&c)); err != nil {
		return Control{}, err
	}

	var value Value
	switch desc.Type {
	case CtrlTypeInteger, CtrlTypeInteger64:
		value = IntegerValue(int64(c.value))
	case CtrlTypeBoolean:
		value = BooleanValue(c.value == 1)
	default:
		return Control{}, fmt.Errorf("%w: %s control %q", ErrUnsupportedType, desc.Type, desc.Name)
	}

	return Control{ID: id, Value: value}, nil
}

// SetControl modifies a single control value. It is shorthand for
// SetControls with a one-element batch.
func (d *Device) SetControl(ctrl Control) error {
	return d.SetControls([]Control{ctrl})
}

// SetControls applies a batch of control values as one atomic
// VIDIOC_S_EXT_CTRLS call. The batch must be non-empty and all controls
// must belong to the same control class; both conditions are checked
// before anything reaches the kernel. The kernel either applies the
// whole batch or reports failure.
func (d *Device) SetControls(ctrls []Control) error {
	return d.submitControls(vidiocSExtCtrls, ctrls)
}

// TryControls validates a batch of control values against the driver
// without applying them, using VIDIOC_TRY_EXT_CTRLS. Batching rules are
// the same as for SetControls.
func (d *Device) TryControls(ctrls []Control) error {
	return d.submitControls(vidiocTryExtCtrls, ctrls)
}

func (d *Device) submitControls(req uint, ctrls []Control) error {
	if len(ctrls) == 0 {
		return ErrEmptyBatch
	}

	list := make([]v4l2ExtControl, 0, len(ctrls))
	// Buffers referenced by raw pointers inside list; they must survive
	// until the ioctl has returned.
	var pinned []any

	var class uint32
	haveClass := false

	for _, ctrl := range ctrls {
		if c := Class(ctrl.ID); !haveClass {
			class, haveClass = c, true
		} else if class != c {
			return ErrMixedClass
		}

		xc := v4l2ExtControl{id: ctrl.ID}
		switch v := ctrl.Value; v.kind {
		case KindNone:
		case KindInteger, KindBoolean:
			xc.setValue64(v.num)
			xc.size = 8
		case KindString:
			buf := []byte(v.str)
			if len(buf) > 0 {
				xc.setPointer(unsafe.Pointer(&buf[0]))
				pinned = append(pinned, buf)
			}
			xc.size = uint32(len(buf))
		case KindCompoundU8:
			if len(v.u8) > 0 {
				xc.setPointer(unsafe.Pointer(&v.u8[0]))
				pinned = append(pinned, v.u8)
			}
			xc.size = uint32(len(v.u8))
		case KindCompoundU16:
			if len(v.u16) > 0 {
				xc.setPointer(unsafe.Pointer(&v.u16[0]))
				pinned = append(pinned, v.u16)
			}
			xc.size = uint32(len(v.u16) * 2)
		case KindCompoundU32:
			if len(v.u32) > 0 {
				xc.setPointer(unsafe.Pointer(&v.u32[0]))
				pinned = append(pinned, v.u32)
			}
			xc.size = uint32(len(v.u32) * 4)
		case KindCompoundPtr:
			if len(v.raw) > 0 {
				xc.setPointer(unsafe.Pointer(&v.raw[0]))
				pinned = append(pinned, v.raw)
			}
			xc.size = uint32(len(v.raw))
		}
		list = append(list, xc)
	}

	if !haveClass {
		return fmt.Errorf("v4l2: cannot determine control class: %w", ErrEmptyBatch)
	}

	xcs := v4l2ExtControls{
		which:    class,
		count:    uint32(len(list)),
		controls: uintptr(unsafe.Pointer(&list[0])),
	}
	err := sysIoctl(d.handle.fd, req, unsafe.Pointer(&xcs))
	runtime.KeepAlive(list)
	runtime.KeepAlive(pinned)
	return err
}

// Read reads raw bytes from the device. The node is opened non-blocking,
// so EAGAIN surfaces instead of suspending; readiness waiting belongs to
// the caller, via the exposed FdSet.
func (d *Device) Read(p []byte) (int, error) {
	n, err := sysRead(d.handle.fd, p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Write writes raw bytes to the device and returns how many the OS call
// accepted, which may be less than len(p).
func (d *Device) Write(p []byte) (int, error) {
	n, err := sysWrite(d.handle.fd, p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Flush is a no-op: writes are unbuffered, every Write goes straight to
// the descriptor.
func (d *Device) Flush() error {
	return nil
}
