package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/config"
	"github.com/berrythewa/clipdeck/internal/daemon"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClipboard struct {
	mu   sync.Mutex
	text string
}

func (m *memClipboard) Name() string                            { return "memory" }
func (m *memClipboard) ReadImage() (*clipboard.RawImage, error) { return nil, nil }
func (m *memClipboard) WriteImage([]byte) error                 { return clipboard.ErrImageUnsupported }

func (m *memClipboard) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *memClipboard) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

type countingInjector struct{ calls atomic.Int32 }

func (c *countingInjector) SendPasteCombo() error {
	c.calls.Add(1)
	return nil
}

// testEnv points every clipdeck path into temporary directories and returns
// the config file path
func testEnv(t *testing.T) string {
	t.Helper()
	short, err := os.MkdirTemp("", "cdc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(short) })

	base := t.TempDir()
	t.Setenv("CLIPDECK_CONFIG_DIR", filepath.Join(base, "config"))
	t.Setenv("CLIPDECK_DATA_DIR", filepath.Join(base, "data"))
	t.Setenv("XDG_RUNTIME_DIR", short)
	t.Setenv("CLIPDECK_CONFIG", "")
	t.Setenv("CLIPDECK_SOCKET", filepath.Join(short, "c.sock"))

	inputDir := filepath.Join(base, "input")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	configPath := filepath.Join(base, "config.yaml")
	yaml := fmt.Sprintf("hotkeys:\n  device_dir: %s\npaste:\n  settle_delay_ms: 0\n  post_paste_delay_ms: 0\n", inputDir)
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))
	return configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

type fakeDaemon struct {
	d    *daemon.Daemon
	clip *memClipboard
	inj  *countingInjector
}

func startFakeDaemon(t *testing.T, configPath string) *fakeDaemon {
	t.Helper()
	loaded, err := config.Load(configPath)
	require.NoError(t, err)

	f := &fakeDaemon{clip: &memClipboard{}, inj: &countingInjector{}}
	f.d = daemon.NewWithDeps(loaded, nil, daemon.Deps{Clipboard: f.clip, Injector: f.inj})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ipc.ListenAndServe(ctx, loaded.IPC.SocketPath, f.d.HandleRequest, nil)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_, err := ipc.SendRequest(loaded.IPC.SocketPath, ipc.NewRequest(ipc.CmdStatus))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return f
}

func TestVersion(t *testing.T) {
	testEnv(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
}

func TestConfigCommands(t *testing.T) {
	configPath := testEnv(t)
	fresh := filepath.Join(t.TempDir(), "fresh.yaml")

	out, err := run(t, "config", "path", "--config", fresh)
	require.NoError(t, err)
	assert.Equal(t, fresh+"\n", out)
	assert.NoFileExists(t, fresh)

	out, err = run(t, "config", "init", "--config", fresh)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at: "+fresh)
	assert.FileExists(t, fresh)

	_, err = run(t, "config", "init", "--config", fresh)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "config", "init", "--config", fresh, "--force")
	assert.NoError(t, err)

	out, err = run(t, "config", "show", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "max_size: 50")
	assert.Contains(t, out, "settle_delay_ms: 0")
}

func TestStatusWithoutDaemon(t *testing.T) {
	configPath := testEnv(t)
	out, err := run(t, "daemon", "status", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "clipdeck daemon is not running\n", out)

	out, err = run(t, "daemon", "stop", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "clipdeck daemon is not running\n", out)

	_, err = run(t, "history", "list", "--config", configPath)
	assert.ErrorContains(t, err, "is the daemon running")
}

func TestHistoryCommands(t *testing.T) {
	configPath := testEnv(t)
	f := startFakeDaemon(t, configPath)
	c := f.d.Coordinator()
	alpha := c.Ingest(clipboard.TextObservation("alpha"))
	beta := c.Ingest(clipboard.TextObservation("beta\nsecond line"))
	require.NotNil(t, alpha)
	require.NotNil(t, beta)

	out, err := run(t, "history", "list", "--compact", "--config", configPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Clipboard History (2 entries, 0 pinned)", lines[0])
	assert.Equal(t, "[1] "+format.ShortID(beta.ID)+" Text beta second line", lines[2])
	assert.Equal(t, "[2] "+format.ShortID(alpha.ID)+" Text alpha", lines[3])

	out, err = run(t, "history", "list", "-n", "1", "--json", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, beta.ID)
	assert.NotContains(t, out, alpha.ID)

	out, err = run(t, "history", "show", format.ShortID(beta.ID), "--raw", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "beta\nsecond line", out)

	out, err = run(t, "history", "pin", format.ShortID(alpha.ID), "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, format.ShortID(alpha.ID)+" pinned\n", out)

	_, err = run(t, "history", "clear", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, 1, f.d.Coordinator().History().Len())

	_, err = run(t, "history", "show", "zzzz", "--config", configPath)
	assert.ErrorContains(t, err, "no history entry matches")

	_, err = run(t, "history", "delete", alpha.ID, "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, 0, f.d.Coordinator().History().Len())
}

func TestPasteCommands(t *testing.T) {
	configPath := testEnv(t)
	f := startFakeDaemon(t, configPath)
	c := f.d.Coordinator()
	alpha := c.Ingest(clipboard.TextObservation("alpha"))
	require.NotNil(t, alpha)
	require.NotNil(t, c.Ingest(clipboard.TextObservation("beta")))

	out, err := run(t, "paste", format.ShortID(alpha.ID), "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "pasted\n", out)
	text, _ := f.clip.ReadText()
	assert.Equal(t, "alpha", text)
	assert.EqualValues(t, 1, f.inj.calls.Load())

	_, err = run(t, "paste", "--text", "¯\\_(ツ)_/¯", "--quiet", "--config", configPath)
	require.NoError(t, err)
	text, _ = f.clip.ReadText()
	assert.Equal(t, "¯\\_(ツ)_/¯", text)
	assert.Equal(t, 2, c.History().Len(), "literal pastes are not recorded")

	_, err = run(t, "paste", alpha.ID, "--text", "x", "--config", configPath)
	assert.Error(t, err)
	_, err = run(t, "paste", "--config", configPath)
	assert.Error(t, err)
}

func TestDaemonStatus(t *testing.T) {
	configPath := testEnv(t)
	f := startFakeDaemon(t, configPath)
	require.NotNil(t, f.d.Coordinator().Ingest(clipboard.TextObservation("x")))

	out, err := run(t, "daemon", "status", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:")
	assert.Contains(t, out, "1 / 50 (0 pinned)")
	assert.Contains(t, out, "memory")
}

func TestHotkeyDevicesEmpty(t *testing.T) {
	configPath := testEnv(t)
	out, err := run(t, "hotkeys", "devices", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No readable keyboard under")
}
