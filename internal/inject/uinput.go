package inject

import (
	"time"

	"github.com/berrythewa/clipdeck/internal/evdev"
	"go.uber.org/multierr"
)

const (
	// DefaultDeviceName names the transient virtual keyboard
	DefaultDeviceName = "clipdeck-paste-helper"

	keyStrokeDelay = 30 * time.Millisecond
)

type keyStep struct {
	code  uint16
	value int32
	after time.Duration
}

var pasteSequence = []keyStep{
	{evdev.KeyLeftCtrl, evdev.ValuePress, keyStrokeDelay},
	{evdev.KeyV, evdev.ValuePress, keyStrokeDelay},
	{evdev.KeyV, evdev.ValueRelease, keyStrokeDelay},
	{evdev.KeyLeftCtrl, evdev.ValueRelease, evdev.DeviceSettleDelay},
}

// keyEmitter is the part of a virtual keyboard the paste sequence drives
type keyEmitter interface {
	Emit(code uint16, value int32) error
	Destroy() error
}

func openVirtualKeyboard(path, name string, keys ...uint16) (keyEmitter, error) {
	kbd, err := evdev.NewVirtualKeyboard(path, name, keys...)
	if err != nil {
		return nil, err
	}
	return kbd, nil
}

// UinputStrategy creates a virtual keyboard through raw uinput ioctls for
// each paste and tears it down afterwards
type UinputStrategy struct {
	path  string
	name  string
	open  func(path, name string, keys ...uint16) (keyEmitter, error)
	sleep func(time.Duration)
}

func NewUinputStrategy(path, name string) *UinputStrategy {
	if path == "" {
		path = evdev.DefaultUinputPath
	}
	if name == "" {
		name = DefaultDeviceName
	}
	return &UinputStrategy{path: path, name: name, open: openVirtualKeyboard, sleep: time.Sleep}
}

func (s *UinputStrategy) Name() string { return TierUinput }

func (s *UinputStrategy) Attempt() (err error) {
	kbd, err := s.open(s.path, s.name, evdev.KeyLeftCtrl, evdev.KeyV)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, kbd.Destroy())
	}()

	s.sleep(evdev.DeviceSettleDelay)

	for _, step := range pasteSequence {
		if err := kbd.Emit(step.code, step.value); err != nil {
			return err
		}
		s.sleep(step.after)
	}
	return nil
}
