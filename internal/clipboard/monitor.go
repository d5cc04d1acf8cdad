package clipboard

import (
	"context"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/types"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often the OS clipboard is read
const DefaultPollInterval = 500 * time.Millisecond

// Ingester receives every detected clipboard change
type Ingester interface {
	Ingest(obs Observation) *types.ClipboardEntry
}

// MonitorOptions configures the polling loop
type MonitorOptions struct {
	PollInterval  time.Duration
	CaptureImages bool
}

// Monitor polls the OS clipboard and hands changes to an Ingester
type Monitor struct {
	clipboard Clipboard
	ingester  Ingester
	opts      MonitorOptions
	logger    *zap.Logger

	lastText    string
	hasText     bool
	lastImageFP uint64
	hasImage    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a monitor. It does not start polling until Start is called.
func NewMonitor(clip Clipboard, ingester Ingester, opts MonitorOptions, logger *zap.Logger) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		clipboard: clip,
		ingester:  ingester,
		opts:      opts,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins polling in the background. Content already on the clipboard at
// start counts as a change.
func (m *Monitor) Start() error {
	if m.clipboard == nil {
		m.logger.Warn("Clipboard monitor disabled", zap.Error(ErrClipboardUnavailable))
		return ErrClipboardUnavailable
	}

	m.logger.Info("Starting clipboard monitor",
		zap.String("backend", m.clipboard.Name()),
		zap.Duration("interval", m.opts.PollInterval))

	m.wg.Add(1)
	go m.run()
	return nil
}

// Stop cancels polling and waits for the loop to exit
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	m.poll()
	for {
		select {
		case <-m.ctx.Done():
			m.logger.Debug("Clipboard monitor stopped")
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll reads the clipboard once and ingests it if it changed since the last read
func (m *Monitor) poll() {
	if m.opts.CaptureImages {
		img, err := m.clipboard.ReadImage()
		if err != nil {
			m.logger.Debug("Failed to read clipboard image", zap.Error(err))
		} else if img != nil {
			fp := Fingerprint(img.Pix)
			if !m.hasImage || fp != m.lastImageFP {
				m.lastImageFP = fp
				m.hasImage = true
				m.hasText = false
				m.ingester.Ingest(Observation{Image: img, Fingerprint: fp})
			}
			return
		}
	}

	text, err := m.clipboard.ReadText()
	if err != nil {
		m.logger.Debug("Failed to read clipboard text", zap.Error(err))
		return
	}
	if text == "" || (m.hasText && text == m.lastText) {
		return
	}

	m.lastText = text
	m.hasText = true
	m.hasImage = false
	m.ingester.Ingest(TextObservation(text))
}
