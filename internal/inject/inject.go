// Package inject delivers a synthetic Ctrl+V to the focused application
// through an ordered list of mechanisms, stopping at the first that works.
package inject

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrAllTiersFailed is returned when every injection mechanism failed
var ErrAllTiersFailed = errors.New("all paste methods failed")

// Tier names accepted by NewFromConfig
const (
	TierUinput          = "uinput"
	TierLibrary         = "library"
	TierXdotool         = "xdotool"
	TierVirtualKeyboard = "virtual-keyboard"
)

// DefaultTiers is the default injection order
var DefaultTiers = []string{TierUinput, TierLibrary, TierXdotool}

// DefaultPreDelay lets the key that triggered the paste settle first
const DefaultPreDelay = 10 * time.Millisecond

// Strategy is one injection mechanism
type Strategy interface {
	Name() string
	Attempt() error
}

// Injector tries its strategies in order
type Injector struct {
	tiers    []Strategy
	preDelay time.Duration
	logger   *zap.Logger
	sleep    func(time.Duration)
}

// New builds an injector over the given strategies, tried in order
func New(preDelay time.Duration, logger *zap.Logger, tiers ...Strategy) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Injector{
		tiers:    tiers,
		preDelay: preDelay,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Options configures the strategies built by NewFromConfig
type Options struct {
	PreDelay   time.Duration
	UinputPath string
	DeviceName string
}

// NewFromConfig builds an injector from tier names
func NewFromConfig(names []string, opts Options, logger *zap.Logger) (*Injector, error) {
	if len(names) == 0 {
		names = DefaultTiers
	}

	tiers := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := newStrategy(name, opts)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, s)
	}
	return New(opts.PreDelay, logger, tiers...), nil
}

func newStrategy(name string, opts Options) (Strategy, error) {
	switch name {
	case TierUinput:
		return NewUinputStrategy(opts.UinputPath, opts.DeviceName), nil
	case TierLibrary:
		return NewLibraryStrategy(), nil
	case TierXdotool:
		return NewXdotoolStrategy(), nil
	case TierVirtualKeyboard:
		return NewVirtualKeyboardStrategy(opts.UinputPath, opts.DeviceName), nil
	default:
		return nil, fmt.Errorf("unknown injection tier %q", name)
	}
}

// ValidTier reports whether name is a known tier
func ValidTier(name string) bool {
	switch name {
	case TierUinput, TierLibrary, TierXdotool, TierVirtualKeyboard:
		return true
	}
	return false
}

// Tiers returns the strategy names in the order they are tried
func (i *Injector) Tiers() []string {
	names := make([]string, len(i.tiers))
	for n, t := range i.tiers {
		names[n] = t.Name()
	}
	return names
}

// SendPasteCombo delivers Ctrl+V using the first strategy that succeeds
func (i *Injector) SendPasteCombo() error {
	if i.preDelay > 0 {
		i.sleep(i.preDelay)
	}

	var errs error
	for _, tier := range i.tiers {
		err := tier.Attempt()
		if err == nil {
			i.logger.Debug("Paste combo sent", zap.String("tier", tier.Name()))
			return nil
		}
		i.logger.Debug("Paste tier failed", zap.String("tier", tier.Name()), zap.Error(err))
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", tier.Name(), err))
	}

	if errs == nil {
		return ErrAllTiersFailed
	}
	return fmt.Errorf("%w: %w", ErrAllTiersFailed, errs)
}
