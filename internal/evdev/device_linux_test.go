//go:build linux

package evdev

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIoctlNumbers(t *testing.T) {
	assert.Equal(t, uintptr(0x80604521), eviocgbit(EvKey, KeyMax/8+1))
	assert.Equal(t, uintptr(0x81004506), eviocgname(256))
}

func TestRecordLayouts(t *testing.T) {
	assert.Equal(t, 92, int(unsafe.Sizeof(uinputSetup{})))
	assert.Equal(t, int(unsafe.Sizeof(Event{})), eventSize)
	assert.Equal(t, eventSize, int(unsafe.Sizeof(Event{}.Time))+8)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "event0"))
	assert.Error(t, err)
}

func TestSupportsKeysOnNonDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event3")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.SupportsKeys(KeyboardKeys...)
	assert.ErrorIs(t, err, ErrSyscall)
}

func TestReadEventsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event1")
	want := []Event{
		{Type: EvKey, Code: KeyV, Value: ValuePress},
		{Type: EvSyn, Code: SynReport},
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&want[0])), len(want)*eventSize)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	got := make([]Event, 8)
	n, err := d.ReadEvents(got)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, want, got[:n])

	_, err = d.ReadEvents(got)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFindKeyboardsSkipsNonDevices(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mouse0"), nil, 0o600))

	found, err := FindKeyboards(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}
