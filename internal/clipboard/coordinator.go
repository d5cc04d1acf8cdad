package clipboard

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/types"
	"go.uber.org/zap"
)

// ErrEntryNotFound is returned when a replay targets an unknown history id
var ErrEntryNotFound = errors.New("history entry not found")

const (
	DefaultSettleDelay = 60 * time.Millisecond
	// DefaultPostPasteDelay covers X11-style sessions where clipboard ownership
	// and paste target readiness settle independently.
	DefaultPostPasteDelay = 250 * time.Millisecond
)

// Injector delivers the paste key combination to the focused application
type Injector interface {
	SendPasteCombo() error
}

// Observation is one detected clipboard change
type Observation struct {
	Text        string
	Image       *RawImage
	Fingerprint uint64
}

// TextObservation wraps observed text
func TextObservation(text string) Observation {
	return Observation{Text: text}
}

// ImageObservation wraps an observed image and fingerprints its pixels
func ImageObservation(img *RawImage) Observation {
	return Observation{Image: img, Fingerprint: Fingerprint(img.Pix)}
}

// CoordinatorOptions tunes the replay timing
type CoordinatorOptions struct {
	SettleDelay    time.Duration
	PostPasteDelay time.Duration
}

// DefaultCoordinatorOptions returns the replay timing for the current OS
func DefaultCoordinatorOptions() CoordinatorOptions {
	opts := CoordinatorOptions{SettleDelay: DefaultSettleDelay}
	if runtime.GOOS == "linux" {
		opts.PostPasteDelay = DefaultPostPasteDelay
	}
	return opts
}

// Coordinator decides whether observed content is our own replay and drives
// replays: OS clipboard write followed by a synthetic paste.
type Coordinator struct {
	history   *History
	clipboard Clipboard
	injector  Injector
	opts      CoordinatorOptions
	logger    *zap.Logger

	// replays are serialized so their tokens and OS writes cannot interleave
	replayMu sync.Mutex
	sleep    func(time.Duration)
}

// NewCoordinator wires a coordinator. clip and injector may be nil, in which
// case replays fail with ErrClipboardUnavailable or skip injection respectively.
func NewCoordinator(history *History, clip Clipboard, injector Injector, opts CoordinatorOptions, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		history:   history,
		clipboard: clip,
		injector:  injector,
		opts:      opts,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// History returns the underlying history
func (c *Coordinator) History() *History {
	return c.history
}

// Ingest hands a detected clipboard change to the history. It returns the new
// entry, or nil if nothing was recorded.
func (c *Coordinator) Ingest(obs Observation) *types.ClipboardEntry {
	var entry *types.ClipboardEntry
	if obs.Image != nil {
		entry = c.history.AddImage(obs.Image, obs.Fingerprint)
	} else {
		entry = c.history.AddText(obs.Text)
	}

	if entry != nil {
		c.logger.Debug("Recorded clipboard entry",
			zap.String("id", entry.ID),
			zap.String("type", string(entry.Content.Type)))
	}
	return entry
}

// Replay writes the entry back to the OS clipboard and pastes it into the
// focused application. The suppression token is armed before the write and
// stays armed on failure.
func (c *Coordinator) Replay(entry *types.ClipboardEntry) error {
	if entry == nil {
		return ErrEntryNotFound
	}

	c.replayMu.Lock()
	defer c.replayMu.Unlock()

	c.history.markPasted(entry)

	if err := c.writeEntry(entry); err != nil {
		c.logger.Error("Failed to write entry to clipboard", zap.String("id", entry.ID), zap.Error(err))
		return err
	}

	return c.pasteLocked()
}

// ReplayByID looks the entry up in history and replays it
func (c *Coordinator) ReplayByID(id string) error {
	entry, ok := c.history.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return c.Replay(entry)
}

// MarkLiteralAsPasted suppresses text that is delivered without going through
// history, without touching the OS clipboard.
func (c *Coordinator) MarkLiteralAsPasted(text string) {
	c.history.markLiteral(text)
}

// PasteLiteral inserts text into the focused application without recording it
func (c *Coordinator) PasteLiteral(text string) error {
	c.replayMu.Lock()
	defer c.replayMu.Unlock()

	c.history.markLiteral(text)

	if c.clipboard == nil {
		return ErrClipboardUnavailable
	}
	if err := c.clipboard.WriteText(text); err != nil {
		return fmt.Errorf("failed to write text to clipboard: %w", err)
	}

	return c.pasteLocked()
}

func (c *Coordinator) writeEntry(entry *types.ClipboardEntry) error {
	if c.clipboard == nil {
		return ErrClipboardUnavailable
	}

	switch entry.Content.Type {
	case types.TypeText:
		if err := c.clipboard.WriteText(entry.Content.Text); err != nil {
			return fmt.Errorf("failed to write text to clipboard: %w", err)
		}
	case types.TypeImage:
		if entry.Content.Image == nil {
			return fmt.Errorf("%w: image entry without data", ErrDecode)
		}
		data, err := DecodeImage(entry.Content.Image.Base64)
		if err != nil {
			return err
		}
		if err := c.clipboard.WriteImage(data); err != nil {
			return fmt.Errorf("failed to write image to clipboard: %w", err)
		}
	default:
		return fmt.Errorf("unknown content type %q", entry.Content.Type)
	}
	return nil
}

func (c *Coordinator) pasteLocked() error {
	c.sleep(c.opts.SettleDelay)

	if c.injector != nil {
		if err := c.injector.SendPasteCombo(); err != nil {
			c.logger.Error("Failed to inject paste", zap.Error(err))
			return err
		}
	}

	if c.opts.PostPasteDelay > 0 {
		c.sleep(c.opts.PostPasteDelay)
	}
	return nil
}
