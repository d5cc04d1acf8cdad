//go:build !linux

package evdev

import (
	"time"

	"go.uber.org/zap"
)

// Event mirrors struct input_event
type Event struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// DeviceSettleDelay is how long a freshly created virtual device needs before
// the input stack delivers its events
const DeviceSettleDelay = 100 * time.Millisecond

// Device is unavailable outside Linux
type Device struct{}

func Open(string) (*Device, error) { return nil, ErrUnsupported }

func (d *Device) Path() string { return "" }

func (d *Device) Name() string { return "" }

func (d *Device) SupportsKeys(...uint16) (bool, error) { return false, ErrUnsupported }

func (d *Device) Poll(time.Duration) (bool, error) { return false, ErrUnsupported }

func (d *Device) ReadEvents([]Event) (int, error) { return 0, ErrUnsupported }

func (d *Device) Close() error { return nil }

func FindKeyboards(string, *zap.Logger) ([]*Device, error) { return nil, ErrUnsupported }

// VirtualKeyboard is unavailable outside Linux
type VirtualKeyboard struct{}

func NewVirtualKeyboard(string, string, ...uint16) (*VirtualKeyboard, error) {
	return nil, ErrUnsupported
}

func (v *VirtualKeyboard) Emit(uint16, int32) error { return ErrUnsupported }

func (v *VirtualKeyboard) Destroy() error { return nil }
