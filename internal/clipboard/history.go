package clipboard

import (
	"strings"
	"sync"

	"github.com/berrythewa/clipdeck/internal/types"
	"go.uber.org/zap"
)

const (
	// DefaultMaxHistory is the default number of entries kept in history
	DefaultMaxHistory = 50

	fileURIPrefix = "file://"
	// LoopbackMarker identifies staging file references written by our own
	// insertion helpers, which must never be recorded.
	LoopbackMarker = "clipdeck/gifs/"
)

// History is the ordered clipboard history. It also holds the suppression
// state for replays, so ingest and replay are serialized by one lock.
type History struct {
	mu      sync.Mutex
	entries []*types.ClipboardEntry
	maxSize int

	pastedText  SuppressionToken[string]
	pastedImage SuppressionToken[uint64]
	// hash of the text accepted or seen by the previous add call
	lastTextHash    uint64
	hasLastTextHash bool

	// version counts mutations and orders the snapshots handed to onChange
	version  uint64
	onChange func(version uint64, entries []types.ClipboardEntry)
	logger   *zap.Logger
}

// NewHistory creates an empty history holding at most maxSize unpinned entries
func NewHistory(maxSize int, logger *zap.Logger) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxHistory
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{
		maxSize: maxSize,
		logger:  logger,
	}
}

// SetOnChange registers a callback invoked with a versioned snapshot after
// every mutation. The callback runs outside the history lock, so concurrent
// mutations may deliver snapshots out of order; a higher version is newer.
func (h *History) SetOnChange(fn func(version uint64, entries []types.ClipboardEntry)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// AddText records copied text. It returns nil when the text is rejected.
func (h *History) AddText(text string) *types.ClipboardEntry {
	h.mu.Lock()

	if h.shouldSkipText(text) {
		h.mu.Unlock()
		return nil
	}

	hash := textHash(text)
	if h.hasLastTextHash && h.lastTextHash == hash {
		h.mu.Unlock()
		h.logger.Debug("Skipping rapid repeat", zap.Uint64("hash", hash))
		return nil
	}

	if top := h.firstUnpinned(); top != nil && top.Content.IsText(text) {
		h.setLastTextHash(hash)
		h.mu.Unlock()
		return nil
	}

	h.removeUnpinnedText(text)
	entry := types.NewTextEntry(text)
	h.insertLocked(entry)
	h.setLastTextHash(hash)
	out := entry.Clone()

	h.unlockAndNotify()
	return &out
}

// AddImage records a copied image identified by the fingerprint of its raw
// pixels. It returns nil when the image is rejected or cannot be encoded.
func (h *History) AddImage(img *RawImage, fingerprint uint64) *types.ClipboardEntry {
	h.mu.Lock()
	skip := h.shouldSkipImage(fingerprint)
	h.mu.Unlock()
	if skip {
		return nil
	}

	b64, err := EncodeImage(img)
	if err != nil {
		h.logger.Debug("Dropping unencodable image", zap.Error(err))
		return nil
	}

	entry := types.NewImageEntry(b64, uint32(img.Width), uint32(img.Height), fingerprint)

	h.mu.Lock()
	h.insertLocked(entry)
	out := entry.Clone()
	h.unlockAndNotify()
	return &out
}

// Insert places an entry before the first unpinned entry and enforces the cap
func (h *History) Insert(entry *types.ClipboardEntry) {
	if entry == nil {
		return
	}
	c := entry.Clone()
	h.mu.Lock()
	h.insertLocked(&c)
	h.unlockAndNotify()
}

// Remove deletes the entry with the given id. It reports whether it existed.
func (h *History) Remove(id string) bool {
	h.mu.Lock()
	for i, e := range h.entries {
		if e.ID == id {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			h.unlockAndNotify()
			return true
		}
	}
	h.mu.Unlock()
	return false
}

// TogglePin flips the pinned flag in place and returns the updated entry
func (h *History) TogglePin(id string) (*types.ClipboardEntry, bool) {
	h.mu.Lock()
	for _, e := range h.entries {
		if e.ID == id {
			e.Pinned = !e.Pinned
			out := e.Clone()
			h.unlockAndNotify()
			return &out, true
		}
	}
	h.mu.Unlock()
	return nil, false
}

// Clear drops every unpinned entry
func (h *History) Clear() {
	h.mu.Lock()
	kept := h.entries[:0]
	for _, e := range h.entries {
		if e.Pinned {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(h.entries); i++ {
		h.entries[i] = nil
	}
	h.entries = kept
	h.unlockAndNotify()
}

// GetAll returns a snapshot of the history in iteration order
func (h *History) GetAll() []types.ClipboardEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Snapshot returns a copy of all entries with the mutation version it reflects
func (h *History) Snapshot() (uint64, []types.ClipboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version, h.snapshotLocked()
}

// Get returns a copy of the entry with the given id
func (h *History) Get(id string) (*types.ClipboardEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.ID == id {
			out := e.Clone()
			return &out, true
		}
	}
	return nil, false
}

// Len returns the number of entries, pinned included
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Restore replaces the history with previously persisted entries and
// re-applies the cap. The change callback is not invoked.
func (h *History) Restore(entries []types.ClipboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = make([]*types.ClipboardEntry, 0, len(entries))
	for i := range entries {
		c := entries[i].Clone()
		h.entries = append(h.entries, &c)
	}
	h.enforceLimitLocked()
}

// markPasted arms the suppression token matching the entry about to be
// written to the OS clipboard and disarms the other one.
func (h *History) markPasted(entry *types.ClipboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch entry.Content.Type {
	case types.TypeText:
		h.pastedText.Arm(entry.Content.Text)
		h.pastedImage.Disarm()
	case types.TypeImage:
		if fp, ok := entry.ImageFingerprint(); ok {
			h.pastedImage.Arm(fp)
		}
		h.pastedText.Disarm()
	}
}

// markLiteral arms the text token and the repeat memo for text delivered
// outside of history.
func (h *History) markLiteral(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pastedText.Arm(text)
	h.setLastTextHash(textHash(text))
}

func (h *History) shouldSkipText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	if strings.Contains(text, fileURIPrefix) && strings.Contains(text, LoopbackMarker) {
		h.logger.Debug("Skipping loopback file reference")
		return true
	}

	if h.pastedText.TryConsumeFunc(func(pasted string) bool {
		return pasted == text || strings.Contains(text, pasted)
	}) {
		h.logger.Debug("Skipping self-pasted text")
		return true
	}

	return false
}

func (h *History) shouldSkipImage(fingerprint uint64) bool {
	if h.pastedImage.TryConsume(fingerprint) {
		h.logger.Debug("Skipping self-pasted image", zap.Uint64("fingerprint", fingerprint))
		return true
	}

	// only the newest unpinned entry is compared for images
	if fp, ok := h.firstUnpinned().ImageFingerprint(); ok && fp == fingerprint {
		return true
	}
	return false
}

func (h *History) firstUnpinned() *types.ClipboardEntry {
	for _, e := range h.entries {
		if !e.Pinned {
			return e
		}
	}
	return nil
}

func (h *History) removeUnpinnedText(text string) {
	kept := h.entries[:0]
	for _, e := range h.entries {
		if !e.Pinned && e.Content.IsText(text) {
			continue
		}
		kept = append(kept, e)
	}
	h.entries = kept
}

func (h *History) insertLocked(entry *types.ClipboardEntry) {
	pos := 0
	for i, e := range h.entries {
		if !e.Pinned {
			pos = i
			break
		}
	}

	h.entries = append(h.entries, nil)
	copy(h.entries[pos+1:], h.entries[pos:])
	h.entries[pos] = entry

	h.enforceLimitLocked()
}

// enforceLimitLocked evicts unpinned entries from the tail. When everything
// left is pinned the cap is not enforced.
func (h *History) enforceLimitLocked() {
	for len(h.entries) > h.maxSize {
		idx := -1
		for i := len(h.entries) - 1; i >= 0; i-- {
			if !h.entries[i].Pinned {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		h.logger.Debug("Evicting history entry", zap.String("id", h.entries[idx].ID))
		h.entries = append(h.entries[:idx], h.entries[idx+1:]...)
	}
}

func (h *History) setLastTextHash(hash uint64) {
	h.lastTextHash = hash
	h.hasLastTextHash = true
}

func (h *History) snapshotLocked() []types.ClipboardEntry {
	out := make([]types.ClipboardEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}

// unlockAndNotify releases the lock and hands a snapshot to the change callback
func (h *History) unlockAndNotify() {
	h.version++
	version := h.version
	fn := h.onChange
	var snap []types.ClipboardEntry
	if fn != nil {
		snap = h.snapshotLocked()
	}
	h.mu.Unlock()
	if fn != nil {
		fn(version, snap)
	}
}
