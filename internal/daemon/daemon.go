package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/config"
	"github.com/berrythewa/clipdeck/internal/hotkey"
	"github.com/berrythewa/clipdeck/internal/inject"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/storage"
	"github.com/berrythewa/clipdeck/internal/types"
	"go.uber.org/zap"
)

const actionQueueSize = 8

// Deps are the OS facing parts of the daemon. Nil fields are built from the
// config by New.
type Deps struct {
	Clipboard clipboard.Clipboard
	Injector  clipboard.Injector
	Storage   storage.HistoryStorage
}

// Daemon owns every long-lived component and serves the control socket
type Daemon struct {
	cfg    *config.Config
	logger *zap.Logger

	history     *clipboard.History
	coordinator *clipboard.Coordinator
	monitor     *clipboard.Monitor
	listener    *hotkey.Listener
	store       storage.HistoryStorage
	picker      *picker
	backend     string
	tiers       []string

	actions   chan hotkey.Action
	startedAt time.Time
	saveMu    sync.Mutex

	// savedVersion is the history version last written to the store
	savedVersion uint64
}

// New builds the daemon from the config, probing the clipboard backend and
// opening the history database.
func New(cfg *config.Config, logger *zap.Logger) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var deps Deps
	clip, err := clipboard.NewSystemClipboard(logger)
	if err != nil {
		logger.Warn("No clipboard backend, running without clipboard access", zap.Error(err))
	} else {
		deps.Clipboard = clip
	}

	injector, err := inject.NewFromConfig(cfg.Paste.Tiers, inject.Options{
		PreDelay:   cfg.Paste.PreInjectDuration(),
		UinputPath: cfg.Paste.UinputPath,
		DeviceName: cfg.Paste.DeviceName,
	}, logger.Named("inject"))
	if err != nil {
		return nil, fmt.Errorf("failed to build paste injector: %w", err)
	}
	deps.Injector = injector

	if cfg.Storage.Enabled {
		store, err := storage.NewBoltStorage(storage.StorageConfig{
			DBPath: cfg.Storage.DBPath,
			Logger: logger.Named("storage"),
		})
		if err != nil {
			return nil, err
		}
		deps.Storage = store
	}

	return NewWithDeps(cfg, logger, deps), nil
}

// NewWithDeps builds the daemon around already constructed OS components
func NewWithDeps(cfg *config.Config, logger *zap.Logger, deps Deps) *Daemon {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		store:   deps.Storage,
		actions: make(chan hotkey.Action, actionQueueSize),
		picker:  newPicker(cfg.Hotkeys.PickerCommand, cfg.IPC.SocketPath, logger.Named("picker")),
		backend: "none",
	}
	if deps.Clipboard != nil {
		d.backend = deps.Clipboard.Name()
	}
	if in, ok := deps.Injector.(*inject.Injector); ok {
		d.tiers = in.Tiers()
	}

	d.history = clipboard.NewHistory(cfg.History.MaxSize, logger.Named("history"))
	d.coordinator = clipboard.NewCoordinator(d.history, deps.Clipboard, deps.Injector, clipboard.CoordinatorOptions{
		SettleDelay:    cfg.Paste.SettleDuration(),
		PostPasteDelay: cfg.Paste.PostPasteDuration(),
	}, logger.Named("coordinator"))
	d.monitor = clipboard.NewMonitor(deps.Clipboard, d.coordinator, clipboard.MonitorOptions{
		PollInterval:  cfg.PollingDuration(),
		CaptureImages: cfg.Monitor.CaptureImages,
	}, logger.Named("monitor"))
	d.listener = hotkey.NewListener(hotkey.Options{DeviceDir: cfg.Hotkeys.DeviceDir}, d.enqueue, logger.Named("hotkey"))
	return d
}

// Coordinator exposes the paste coordinator
func (d *Daemon) Coordinator() *clipboard.Coordinator {
	return d.coordinator
}

// Run starts every component and serves the control socket until ctx is done
func (d *Daemon) Run(ctx context.Context) error {
	d.startedAt = time.Now()
	d.restore()
	d.history.SetOnChange(d.persist)

	if err := d.monitor.Start(); err != nil {
		d.logger.Warn("Clipboard history capture disabled", zap.Error(err))
	}
	if d.cfg.Hotkeys.Enabled {
		if err := d.listener.Start(); err != nil && !errors.Is(err, hotkey.ErrNoKeyboards) {
			d.logger.Warn("Hotkey listener failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.dispatchLoop(ctx)
	}()

	pidFile := PIDFilePath(d.cfg)
	if err := WritePIDFile(pidFile, os.Getpid()); err != nil {
		d.logger.Warn("Failed to write PID file", zap.String("path", pidFile), zap.Error(err))
	}
	defer RemovePIDFile(pidFile)

	d.logger.Info("Daemon started",
		zap.String("backend", d.backend),
		zap.Strings("tiers", d.tiers),
		zap.Int("entries", d.history.Len()))

	err := ipc.ListenAndServe(ctx, d.cfg.IPC.SocketPath, d.HandleRequest, d.logger.Named("ipc"))
	cancel()
	wg.Wait()
	d.shutdown()
	return err
}

func (d *Daemon) shutdown() {
	d.logger.Info("Shutting down")
	d.listener.Stop()
	d.monitor.Stop()
	d.picker.Close()

	if d.store != nil {
		d.persist(d.history.Snapshot())
		if err := d.store.Close(); err != nil {
			d.logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
}

func (d *Daemon) restore() {
	if d.store == nil {
		return
	}
	entries, err := d.store.LoadHistory()
	if err != nil {
		d.logger.Warn("Failed to load saved history", zap.Error(err))
		return
	}
	d.history.Restore(entries)
	d.logger.Info("Restored history", zap.Int("entries", d.history.Len()))
}

// persist writes a history snapshot unless a newer one is already stored
func (d *Daemon) persist(version uint64, entries []types.ClipboardEntry) {
	if d.store == nil {
		return
	}
	d.saveMu.Lock()
	defer d.saveMu.Unlock()
	if version < d.savedVersion {
		d.logger.Debug("Skipping stale history snapshot",
			zap.Uint64("version", version), zap.Uint64("saved", d.savedVersion))
		return
	}
	if err := d.store.SaveHistory(entries); err != nil {
		d.logger.Error("Failed to save history", zap.Error(err))
		return
	}
	d.savedVersion = version
}

// enqueue runs on a hotkey device goroutine and must not block
func (d *Daemon) enqueue(a hotkey.Action) {
	select {
	case d.actions <- a:
	default:
		d.logger.Debug("Dropping hotkey action, queue full", zap.Stringer("action", a))
	}
}

func (d *Daemon) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-d.actions:
			d.dispatch(a)
		}
	}
}

func (d *Daemon) dispatch(a hotkey.Action) {
	d.logger.Debug("Hotkey action", zap.Stringer("action", a))
	switch a {
	case hotkey.ActionToggle:
		if err := d.picker.Toggle(); err != nil {
			d.logger.Warn("Failed to toggle picker", zap.Error(err))
		}
	case hotkey.ActionClose:
		d.picker.Close()
	}
}
