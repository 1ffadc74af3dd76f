//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2)
// control API: opening device nodes, querying capabilities, enumerating
// device controls, and getting/setting control values.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Opening Devices
//
// Devices are opened by index or by explicit path:
//
//	dev, err := v4l2.New(0)              // /dev/video0
//	dev, err := v4l2.WithPath("/dev/video2")
//	defer dev.Close()
//
// # Controls
//
// Enumerate everything the driver supports, fully described:
//
//	descs, _ := dev.QueryControls()
//	for _, d := range descs {
//	    fmt.Printf("%08x %s\n", d.ID, d.Name)
//	}
//
// Read a scalar control and set a batch atomically:
//
//	ctrl, _ := dev.Control(v4l2.CIDBrightness)
//	err := dev.SetControls([]v4l2.Control{
//	    {ID: v4l2.CIDBrightness, Value: v4l2.IntegerValue(128)},
//	    {ID: v4l2.CIDAutoWhiteBalance, Value: v4l2.BooleanValue(true)},
//	})
//
// All controls in one SetControls call must belong to the same control
// class; the batch is submitted as a single VIDIOC_S_EXT_CTRLS ioctl so
// the kernel applies it atomically.
//
// # Handle Sharing
//
// The Device owns a reference-counted Handle around the file descriptor.
// Collaborators that need the raw fd (select/poll loops, buffer managers)
// call Device.Handle, which acquires an extra reference; the descriptor is
// closed exactly once, when the last reference is released.
package v4l2
