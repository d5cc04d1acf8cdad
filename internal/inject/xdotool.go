package inject

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoDisplay is returned by the xdotool tier outside an X session
var ErrNoDisplay = errors.New("DISPLAY is not set")

// XdotoolStrategy shells out to xdotool when an X display is available
type XdotoolStrategy struct {
	lookupEnv func(string) (string, bool)
	run       func(name string, args ...string) ([]byte, error)
}

func NewXdotoolStrategy() *XdotoolStrategy {
	return &XdotoolStrategy{
		lookupEnv: os.LookupEnv,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

func (s *XdotoolStrategy) Name() string { return TierXdotool }

func (s *XdotoolStrategy) Attempt() error {
	if _, ok := s.lookupEnv("DISPLAY"); !ok {
		return ErrNoDisplay
	}

	out, err := s.run("xdotool", "key", "--clearmodifiers", "ctrl+v")
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("xdotool: %w: %s", err, msg)
		}
		return fmt.Errorf("xdotool: %w", err)
	}
	return nil
}
