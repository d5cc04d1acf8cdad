//go:build linux

package evdev

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctls from linux/uinput.h
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevSetup   = 0x405c5503
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	busUSB = 0x03

	uinputMaxNameSize = 80
)

// DeviceSettleDelay is how long a freshly created virtual device needs before
// the input stack delivers its events
const DeviceSettleDelay = 100 * time.Millisecond

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// uinputSetup mirrors struct uinput_setup
type uinputSetup struct {
	ID           inputID
	Name         [uinputMaxNameSize]byte
	FFEffectsMax uint32
}

// VirtualKeyboard is a transient uinput keyboard able to emit a fixed key set
type VirtualKeyboard struct {
	fd int
}

// NewVirtualKeyboard creates a virtual keyboard advertising the given keys
func NewVirtualKeyboard(path, name string, keys ...uint16) (*VirtualKeyboard, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, syscallErr("open "+path, err)
	}

	v := &VirtualKeyboard{fd: fd}
	if err := v.setup(name, keys); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return v, nil
}

func (v *VirtualKeyboard) setup(name string, keys []uint16) error {
	if err := unix.IoctlSetInt(v.fd, uiSetEvBit, int(EvKey)); err != nil {
		return syscallErr("UI_SET_EVBIT", err)
	}
	for _, k := range keys {
		if err := unix.IoctlSetInt(v.fd, uiSetKeyBit, int(k)); err != nil {
			return syscallErr("UI_SET_KEYBIT", err)
		}
	}

	setup := uinputSetup{
		ID: inputID{Bustype: busUSB, Vendor: 0x1234, Product: 0x5678, Version: 0x0001},
	}
	copy(setup.Name[:uinputMaxNameSize-1], name)

	if err := ioctlPtr(v.fd, uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		return syscallErr("UI_DEV_SETUP", err)
	}
	if err := ioctlPtr(v.fd, uiDevCreate, nil); err != nil {
		return syscallErr("UI_DEV_CREATE", err)
	}
	return nil
}

// Emit writes one key transition followed by a synchronization report
func (v *VirtualKeyboard) Emit(code uint16, value int32) error {
	events := [2]Event{
		{Type: EvKey, Code: code, Value: value},
		{Type: EvSyn, Code: SynReport},
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&events[0])), 2*eventSize)
	n, err := unix.Write(v.fd, raw)
	if err != nil {
		return syscallErr("write event", err)
	}
	if n != len(raw) {
		return syscallErr("write event", unix.EIO)
	}
	return nil
}

// Destroy removes the virtual device and closes the control file
func (v *VirtualKeyboard) Destroy() error {
	err := ioctlPtr(v.fd, uiDevDestroy, nil)
	closeErr := unix.Close(v.fd)
	if err != nil {
		return syscallErr("UI_DEV_DESTROY", err)
	}
	if closeErr != nil {
		return syscallErr("close", closeErr)
	}
	return nil
}
