//go:build !linux

package inject

import "github.com/berrythewa/clipdeck/internal/evdev"

// VirtualKeyboardStrategy is only available on linux
type VirtualKeyboardStrategy struct{}

func NewVirtualKeyboardStrategy(string, string) *VirtualKeyboardStrategy {
	return &VirtualKeyboardStrategy{}
}

func (s *VirtualKeyboardStrategy) Name() string { return TierVirtualKeyboard }

func (s *VirtualKeyboardStrategy) Attempt() error { return evdev.ErrUnsupported }
