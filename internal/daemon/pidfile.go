package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/berrythewa/clipdeck/internal/config"
)

// ErrNotRunning is returned when no live daemon owns the PID file
var ErrNotRunning = errors.New("daemon is not running")

// PIDFilePath returns the PID file location next to the control socket
func PIDFilePath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.IPC.SocketPath), "clipdeck.pid")
}

// WritePIDFile records pid
func WritePIDFile(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644)
}

// RemovePIDFile deletes the PID file, ignoring a missing file
func RemovePIDFile(path string) {
	_ = os.Remove(path)
}

// ReadPID returns the pid stored in path if that process is alive
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in file: %q", string(data))
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, ErrNotRunning
	}
	// signal 0 only checks that the process exists
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Stop sends SIGTERM to the daemon recorded in the PID file
func Stop(cfg *config.Config) (int, error) {
	pid, err := ReadPID(PIDFilePath(cfg))
	if err != nil {
		return 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("failed to find process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return 0, fmt.Errorf("failed to signal process: %w", err)
	}
	return pid, nil
}
