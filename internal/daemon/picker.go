package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoPicker is returned by Toggle when no picker command is configured
var ErrNoPicker = errors.New("no picker command configured")

const pickerStopTimeout = 2 * time.Second

// picker runs the external history picker. At most one instance runs.
type picker struct {
	args   []string
	socket string
	logger *zap.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

func newPicker(command, socket string, logger *zap.Logger) *picker {
	return &picker{
		args:   strings.Fields(command),
		socket: socket,
		logger: logger,
	}
}

// Running reports whether a picker process is alive
func (p *picker) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// Toggle starts the picker, or stops it when it is already open
func (p *picker) Toggle() error {
	if p.Running() {
		p.Close()
		return nil
	}
	return p.start()
}

func (p *picker) start() error {
	if len(p.args) == 0 {
		return ErrNoPicker
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil {
		return nil
	}

	cmd := exec.Command(p.args[0], p.args[1:]...)
	cmd.Env = append(os.Environ(), "CLIPDECK_SOCKET="+p.socket)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start picker %q: %w", p.args[0], err)
	}

	done := make(chan struct{})
	p.cmd = cmd
	p.done = done
	p.logger.Debug("Picker started", zap.Int("pid", cmd.Process.Pid))

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
			p.done = nil
		}
		p.mu.Unlock()
		close(done)
		p.logger.Debug("Picker exited", zap.Error(err))
	}()
	return nil
}

// Close stops the picker if it is running and waits for it to exit
func (p *picker) Close() {
	p.mu.Lock()
	cmd, done := p.cmd, p.done
	p.mu.Unlock()
	if cmd == nil {
		return
	}

	if err := cmd.Process.Kill(); err != nil {
		p.logger.Debug("Failed to kill picker", zap.Error(err))
	}
	select {
	case <-done:
	case <-time.After(pickerStopTimeout):
		p.logger.Warn("Picker did not exit", zap.Int("pid", cmd.Process.Pid))
	}
}
