//go:build linux

package inject

import (
	"fmt"
	"time"

	"github.com/bendahl/uinput"
	"github.com/berrythewa/clipdeck/internal/evdev"
	"go.uber.org/multierr"
)

// VirtualKeyboardStrategy pastes through a full virtual keyboard created by
// the bendahl/uinput library
type VirtualKeyboardStrategy struct {
	path  string
	name  string
	sleep func(time.Duration)
}

func NewVirtualKeyboardStrategy(path, name string) *VirtualKeyboardStrategy {
	if path == "" {
		path = evdev.DefaultUinputPath
	}
	if name == "" {
		name = DefaultDeviceName
	}
	return &VirtualKeyboardStrategy{path: path, name: name, sleep: time.Sleep}
}

func (s *VirtualKeyboardStrategy) Name() string { return TierVirtualKeyboard }

func (s *VirtualKeyboardStrategy) Attempt() (err error) {
	kbd, err := uinput.CreateKeyboard(s.path, []byte(s.name))
	if err != nil {
		return fmt.Errorf("create virtual keyboard: %w", err)
	}
	defer func() {
		err = multierr.Append(err, kbd.Close())
	}()

	s.sleep(evdev.DeviceSettleDelay)

	if err := kbd.KeyDown(uinput.KeyLeftctrl); err != nil {
		return fmt.Errorf("ctrl down: %w", err)
	}
	if err := kbd.KeyPress(uinput.KeyV); err != nil {
		return fmt.Errorf("press v: %w", err)
	}
	if err := kbd.KeyUp(uinput.KeyLeftctrl); err != nil {
		return fmt.Errorf("ctrl up: %w", err)
	}

	s.sleep(evdev.DeviceSettleDelay)
	return nil
}
