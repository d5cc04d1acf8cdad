package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/compression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func newTestStorage(t *testing.T) (*BoltStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := NewBoltStorage(StorageConfig{DBPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestBoltStorage(t *testing.T) {
	s, path := newTestStorage(t)

	pinned := types.NewImageEntry("iVBORw0KGgo=", 2, 2, 77)
	pinned.Pinned = true
	entries := []types.ClipboardEntry{
		*pinned,
		*types.NewTextEntry("first"),
		*types.NewTextEntry(strings.Repeat("long text ", 300)),
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, s.SaveHistory(entries))

		got, err := s.LoadHistory()
		require.NoError(t, err)
		require.Len(t, got, len(entries))
		for i := range entries {
			assert.Equal(t, entries[i].ID, got[i].ID)
			assert.Equal(t, entries[i].Content, got[i].Content)
			assert.Equal(t, entries[i].Pinned, got[i].Pinned)
			assert.Equal(t, entries[i].Preview, got[i].Preview)
			assert.True(t, entries[i].Timestamp.Equal(got[i].Timestamp))
		}

		fp, ok := got[0].ImageFingerprint()
		require.True(t, ok)
		assert.Equal(t, uint64(77), fp)
	})

	t.Run("LargeEntriesAreCompressed", func(t *testing.T) {
		err := s.db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket([]byte(historyBucket))
			assert.False(t, compression.IsCompressed(b.Get(positionKey(1))))
			assert.True(t, compression.IsCompressed(b.Get(positionKey(2))))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("SaveReplacesSnapshot", func(t *testing.T) {
		require.NoError(t, s.SaveHistory(entries[1:2]))
		got, err := s.LoadHistory()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "first", got[0].Content.Text)
	})

	t.Run("Stats", func(t *testing.T) {
		st, err := s.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, st.Entries)
		assert.Positive(t, st.Bytes)
		assert.False(t, st.SavedAt.IsZero())
		assert.Equal(t, path, st.Path)
	})
}

func TestOrderSurvivesManyEntries(t *testing.T) {
	s, _ := newTestStorage(t)

	var entries []types.ClipboardEntry
	for i := 0; i < 300; i++ {
		entries = append(entries, *types.NewTextEntry(fmt.Sprintf("entry-%d", i)))
	}
	require.NoError(t, s.SaveHistory(entries))

	got, err := s.LoadHistory()
	require.NoError(t, err)
	require.Len(t, got, 300)
	for i := range got {
		assert.Equal(t, entries[i].ID, got[i].ID)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewBoltStorage(StorageConfig{DBPath: path})
	require.NoError(t, err)
	require.NoError(t, s.SaveHistory([]types.ClipboardEntry{*types.NewTextEntry("persisted")}))
	require.NoError(t, s.Close())

	s, err = NewBoltStorage(StorageConfig{DBPath: path})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadHistory()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "persisted", got[0].Content.Text)
}

func TestCorruptEntriesAreSkipped(t *testing.T) {
	s, _ := newTestStorage(t)
	require.NoError(t, s.SaveHistory([]types.ClipboardEntry{*types.NewTextEntry("good")}))

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).Put(positionKey(1), []byte("{not json"))
	})
	require.NoError(t, err)

	got, err := s.LoadHistory()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Content.Text)
}

func TestClosedStorage(t *testing.T) {
	s, _ := newTestStorage(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.SaveHistory(nil), ErrClosed)
	_, err := s.LoadHistory()
	assert.ErrorIs(t, err, ErrClosed)
}
