package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

func TestPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "clipdeck.pid")

	_, err := ReadPID(path)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, WritePIDFile(path, os.Getpid()))
	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	RemovePIDFile(path)
	assert.NoFileExists(t, path)
	RemovePIDFile(path)
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipdeck.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o644))
	_, err := ReadPID(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotRunning)
}

func TestPIDFilePathFollowsSocket(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.IPC.SocketPath), "clipdeck.pid"), PIDFilePath(cfg))
}
