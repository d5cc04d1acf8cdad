// Package hotkey detects the global clipboard shortcuts by reading raw
// keyboard devices, below any window manager or toolkit.
package hotkey

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/berrythewa/clipdeck/internal/evdev"
	"go.uber.org/zap"
)

// ErrNoKeyboards is returned when no readable keyboard device was found
var ErrNoKeyboards = errors.New("no usable keyboard device found")

const (
	DefaultPollTimeout  = 200 * time.Millisecond
	DefaultErrorBackoff = 100 * time.Millisecond
	readBatch           = 64
)

// Action is what a recognized shortcut asks the application to do
type Action int

const (
	// ActionToggle is Super+V or Ctrl+Alt+V
	ActionToggle Action = iota + 1
	// ActionClose is Escape
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionClose:
		return "close"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// SharedState is the modifier state aggregated across every keyboard plus
// the stop flag. A press on any device sets a modifier, a release on any
// device clears it.
type SharedState struct {
	super   atomic.Bool
	ctrl    atomic.Bool
	alt     atomic.Bool
	stopped atomic.Bool
}

func (s *SharedState) Super() bool   { return s.super.Load() }
func (s *SharedState) Ctrl() bool    { return s.ctrl.Load() }
func (s *SharedState) Alt() bool     { return s.alt.Load() }
func (s *SharedState) Stopped() bool { return s.stopped.Load() }

// Stop asks every device goroutine to exit at its next poll cycle
func (s *SharedState) Stop() { s.stopped.Store(true) }

func (s *SharedState) reset() {
	s.super.Store(false)
	s.ctrl.Store(false)
	s.alt.Store(false)
	s.stopped.Store(false)
}

// EventSource is one keyboard device
type EventSource interface {
	Path() string
	// Poll waits up to timeout for readable events
	Poll(timeout time.Duration) (bool, error)
	// ReadEvents returns evdev.ErrNoData when nothing is queued
	ReadEvents(events []evdev.Event) (int, error)
	Close() error
}

// Options configures a Listener
type Options struct {
	DeviceDir    string
	PollTimeout  time.Duration
	ErrorBackoff time.Duration
}

// Listener runs one goroutine per keyboard and reports recognized shortcuts
// through a callback. The callback runs on the device goroutine and must
// return quickly.
type Listener struct {
	opts     Options
	callback func(Action)
	logger   *zap.Logger
	state    *SharedState

	mu      sync.Mutex
	sources []EventSource
	wg      sync.WaitGroup
	sleep   func(time.Duration)
}

// NewListener creates a listener that is not yet reading any device
func NewListener(opts Options, callback func(Action), logger *zap.Logger) *Listener {
	if opts.DeviceDir == "" {
		opts.DeviceDir = evdev.DefaultInputDir
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = DefaultErrorBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		opts:     opts,
		callback: callback,
		logger:   logger,
		state:    &SharedState{},
		sleep:    time.Sleep,
	}
}

// State exposes the shared modifier state
func (l *Listener) State() *SharedState {
	return l.state
}

// Start finds the keyboards under the device directory and listens on each.
// With no keyboard it returns ErrNoKeyboards and the rest of the program
// keeps running without global shortcuts.
func (l *Listener) Start() error {
	devices, err := evdev.FindKeyboards(l.opts.DeviceDir, l.logger)
	if err != nil {
		l.logger.Warn("Global hotkeys unavailable", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNoKeyboards, err)
	}
	if len(devices) == 0 {
		l.logger.Warn("Global hotkeys unavailable", zap.Error(ErrNoKeyboards))
		return ErrNoKeyboards
	}

	sources := make([]EventSource, len(devices))
	for i, d := range devices {
		sources[i] = d
	}
	l.StartSources(sources)
	return nil
}

// StartSources listens on already opened devices. A stopped listener with
// no remaining devices starts over with cleared modifiers.
func (l *Listener) StartSources(sources []EventSource) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.sources) == 0 && l.state.Stopped() {
		l.state.reset()
	}
	l.logger.Info("Listening for global hotkeys", zap.Int("keyboards", len(sources)))
	for _, src := range sources {
		l.sources = append(l.sources, src)
		l.wg.Add(1)
		go l.listen(src)
	}
}

// Active returns the number of devices being listened on
func (l *Listener) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sources)
}

// Stop signals every device goroutine, waits for them and closes the devices.
// Each goroutine notices the flag within one poll timeout.
func (l *Listener) Stop() {
	l.state.Stop()
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, src := range l.sources {
		if err := src.Close(); err != nil {
			l.logger.Debug("Failed to close device", zap.String("path", src.Path()), zap.Error(err))
		}
	}
	l.sources = nil
}

func (l *Listener) listen(src EventSource) {
	defer l.wg.Done()

	logger := l.logger.With(zap.String("device", src.Path()))
	logger.Debug("Device listener started")

	// only the first failure of a run is a warning; an unplugged device
	// keeps failing on every retry
	failures := 0
	fail := func(msg string, err error) {
		failures++
		if failures == 1 {
			logger.Warn(msg, zap.Error(err))
		} else {
			logger.Debug(msg, zap.Error(err), zap.Int("failures", failures))
		}
		l.sleep(l.opts.ErrorBackoff)
	}

	buf := make([]evdev.Event, readBatch)
	for !l.state.Stopped() {
		ready, err := src.Poll(l.opts.PollTimeout)
		if err != nil {
			fail("Failed to poll device", err)
			continue
		}
		if !ready {
			continue
		}

		n, err := src.ReadEvents(buf)
		if errors.Is(err, evdev.ErrNoData) {
			continue
		}
		if err != nil {
			fail("Failed to read device events", err)
			continue
		}
		if failures > 0 {
			logger.Info("Device readable again", zap.Int("failures", failures))
			failures = 0
		}

		for _, ev := range buf[:n] {
			l.handleEvent(ev)
		}
	}

	logger.Debug("Device listener stopped")
}

func (l *Listener) handleEvent(ev evdev.Event) {
	if ev.Type != evdev.EvKey || ev.Value == evdev.ValueRepeat {
		return
	}
	pressed := ev.Value == evdev.ValuePress

	switch ev.Code {
	case evdev.KeyLeftMeta, evdev.KeyRightMeta:
		l.state.super.Store(pressed)
	case evdev.KeyLeftCtrl, evdev.KeyRightCtrl:
		l.state.ctrl.Store(pressed)
	case evdev.KeyLeftAlt, evdev.KeyRightAlt:
		l.state.alt.Store(pressed)
	case evdev.KeyV:
		if pressed && (l.state.Super() || (l.state.Ctrl() && l.state.Alt())) {
			l.emit(ActionToggle)
		}
	case evdev.KeyEsc:
		if pressed {
			l.emit(ActionClose)
		}
	}
}

func (l *Listener) emit(a Action) {
	l.logger.Debug("Hotkey triggered", zap.Stringer("action", a))
	if l.callback != nil {
		l.callback(a)
	}
}
