// Package evdev reads Linux input devices and creates transient uinput
// keyboards. It talks to the kernel through raw ioctls and fixed-size event
// records as laid out in linux/input.h and linux/uinput.h.
package evdev

import (
	"errors"
	"fmt"
)

// Event types and codes from linux/input-event-codes.h
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01

	SynReport uint16 = 0

	KeyEsc       uint16 = 1
	KeyLeftCtrl  uint16 = 29
	KeyA         uint16 = 30
	KeyV         uint16 = 47
	KeyLeftAlt   uint16 = 56
	KeyRightCtrl uint16 = 97
	KeyRightAlt  uint16 = 100
	KeyLeftMeta  uint16 = 125
	KeyRightMeta uint16 = 126

	// KeyMax is the highest key code the kernel reports capabilities for
	KeyMax = 0x2ff
)

// Key event values
const (
	ValueRelease int32 = 0
	ValuePress   int32 = 1
	ValueRepeat  int32 = 2
)

const (
	// DefaultInputDir is where the kernel exposes input device nodes
	DefaultInputDir = "/dev/input"
	// DefaultUinputPath is the uinput control device
	DefaultUinputPath = "/dev/uinput"
)

var (
	// ErrNoData is returned by non-blocking reads when no event is queued
	ErrNoData = errors.New("no input data available")
	// ErrSyscall wraps ioctl and device write failures
	ErrSyscall = errors.New("input syscall failed")
	// ErrUnsupported is returned on platforms without evdev
	ErrUnsupported = errors.New("evdev is not supported on this platform")
)

// KeyboardKeys are the capabilities a device must report to count as a keyboard.
// Mice, dials and power buttons lack at least one of them.
var KeyboardKeys = []uint16{KeyA, KeyLeftCtrl, KeyLeftMeta}

func syscallErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSyscall, op, err)
}
