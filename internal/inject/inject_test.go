package inject

import (
	"errors"
	"testing"
	"time"

	"github.com/berrythewa/clipdeck/internal/evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTier struct {
	name  string
	err   error
	calls int
}

func (f *fakeTier) Name() string { return f.name }

func (f *fakeTier) Attempt() error {
	f.calls++
	return f.err
}

func newTestInjector(tiers ...Strategy) (*Injector, *[]time.Duration) {
	var slept []time.Duration
	inj := New(DefaultPreDelay, nil, tiers...)
	inj.sleep = func(d time.Duration) { slept = append(slept, d) }
	return inj, &slept
}

func TestFirstSuccessfulTierWins(t *testing.T) {
	first := &fakeTier{name: "first", err: errors.New("no uinput access")}
	second := &fakeTier{name: "second"}
	third := &fakeTier{name: "third"}
	inj, slept := newTestInjector(first, second, third)

	require.NoError(t, inj.SendPasteCombo())
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, third.calls, "later tiers must not run after a success")
	assert.Equal(t, []time.Duration{DefaultPreDelay}, *slept)
}

func TestAllTiersFailing(t *testing.T) {
	errA := errors.New("a broke")
	errB := errors.New("b broke")
	inj, _ := newTestInjector(&fakeTier{name: "a", err: errA}, &fakeTier{name: "b", err: errB})

	err := inj.SendPasteCombo()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllTiersFailed)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "a: a broke")
}

func TestNoTiers(t *testing.T) {
	inj, _ := newTestInjector()
	assert.ErrorIs(t, inj.SendPasteCombo(), ErrAllTiersFailed)
}

func TestNewFromConfig(t *testing.T) {
	inj, err := NewFromConfig(nil, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTiers, inj.Tiers())

	inj, err = NewFromConfig([]string{TierXdotool, TierVirtualKeyboard}, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{TierXdotool, TierVirtualKeyboard}, inj.Tiers())

	_, err = NewFromConfig([]string{"telepathy"}, Options{}, nil)
	assert.Error(t, err)

	assert.True(t, ValidTier(TierLibrary))
	assert.False(t, ValidTier("telepathy"))
}

func TestXdotoolNeedsDisplay(t *testing.T) {
	called := false
	s := &XdotoolStrategy{
		lookupEnv: func(string) (string, bool) { return "", false },
		run: func(string, ...string) ([]byte, error) {
			called = true
			return nil, nil
		},
	}
	assert.ErrorIs(t, s.Attempt(), ErrNoDisplay)
	assert.False(t, called)
}

func TestXdotoolInvocation(t *testing.T) {
	var gotName string
	var gotArgs []string
	s := &XdotoolStrategy{
		lookupEnv: func(k string) (string, bool) { return ":0", k == "DISPLAY" },
		run: func(name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return nil, nil
		},
	}
	require.NoError(t, s.Attempt())
	assert.Equal(t, "xdotool", gotName)
	assert.Equal(t, []string{"key", "--clearmodifiers", "ctrl+v"}, gotArgs)

	s.run = func(string, ...string) ([]byte, error) {
		return []byte("Can't open display\n"), errors.New("exit status 1")
	}
	err := s.Attempt()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't open display")
}

func TestUinputTierFailsWithoutDevice(t *testing.T) {
	s := NewUinputStrategy(t.TempDir()+"/missing-uinput", "")
	s.sleep = func(time.Duration) {}
	assert.Error(t, s.Attempt())
}

type keyStroke struct {
	code  uint16
	value int32
}

type recordingKeyboard struct {
	strokes   []keyStroke
	failAt    int
	destroyed int
}

func (r *recordingKeyboard) Emit(code uint16, value int32) error {
	if r.failAt > 0 && len(r.strokes)+1 == r.failAt {
		return errors.New("write event: EIO")
	}
	r.strokes = append(r.strokes, keyStroke{code, value})
	return nil
}

func (r *recordingKeyboard) Destroy() error {
	r.destroyed++
	return nil
}

func newRecordingUinput(kbd *recordingKeyboard) (*UinputStrategy, *[]time.Duration, *[]uint16) {
	var slept []time.Duration
	var keys []uint16
	s := NewUinputStrategy("/dev/uinput-test", "")
	s.open = func(path, name string, k ...uint16) (keyEmitter, error) {
		keys = append(keys, k...)
		return kbd, nil
	}
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	return s, &slept, &keys
}

func TestUinputPasteSequence(t *testing.T) {
	kbd := &recordingKeyboard{}
	s, slept, keys := newRecordingUinput(kbd)

	require.NoError(t, s.Attempt())
	assert.Equal(t, []uint16{evdev.KeyLeftCtrl, evdev.KeyV}, *keys)
	assert.Equal(t, []keyStroke{
		{evdev.KeyLeftCtrl, evdev.ValuePress},
		{evdev.KeyV, evdev.ValuePress},
		{evdev.KeyV, evdev.ValueRelease},
		{evdev.KeyLeftCtrl, evdev.ValueRelease},
	}, kbd.strokes)
	assert.Equal(t, []time.Duration{
		evdev.DeviceSettleDelay,
		30 * time.Millisecond,
		30 * time.Millisecond,
		30 * time.Millisecond,
		evdev.DeviceSettleDelay,
	}, *slept)
	assert.Equal(t, 1, kbd.destroyed)
}

func TestUinputDestroysDeviceWhenEmitFails(t *testing.T) {
	kbd := &recordingKeyboard{failAt: 2}
	s, _, _ := newRecordingUinput(kbd)

	err := s.Attempt()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EIO")
	assert.Equal(t, []keyStroke{{evdev.KeyLeftCtrl, evdev.ValuePress}}, kbd.strokes)
	assert.Equal(t, 1, kbd.destroyed)
}

func TestUinputOpenFailureSkipsDestroy(t *testing.T) {
	s := NewUinputStrategy("", "")
	s.open = func(string, string, ...uint16) (keyEmitter, error) {
		return nil, errors.New("open /dev/uinput: permission denied")
	}
	s.sleep = func(time.Duration) { t.Fatal("no delay without a device") }
	assert.ErrorContains(t, s.Attempt(), "permission denied")
}
