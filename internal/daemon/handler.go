package daemon

import (
	"errors"
	"os"
	"time"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/storage"
	"github.com/berrythewa/clipdeck/internal/types"
	"go.uber.org/zap"
)

// Status is the payload of the status command
type Status struct {
	PID           int            `json:"pid"`
	StartedAt     time.Time      `json:"started_at"`
	Uptime        string         `json:"uptime"`
	Entries       int            `json:"entries"`
	Pinned        int            `json:"pinned"`
	MaxSize       int            `json:"max_size"`
	Backend       string         `json:"backend"`
	Tiers         []string       `json:"tiers"`
	Keyboards     int            `json:"keyboards"`
	PickerRunning bool           `json:"picker_running"`
	Storage       *storage.Stats `json:"storage,omitempty"`
}

// HandleRequest serves one control socket request
func (d *Daemon) HandleRequest(req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CmdHistory:
		entries := d.history.GetAll()
		if limit, ok := req.IntArg("limit"); ok && limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}
		return ipc.OK("", entries)

	case ipc.CmdGet:
		id, ok := req.StringArg("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		entry, found := d.history.Get(id)
		if !found {
			return ipc.Errorf("%v: %s", clipboard.ErrEntryNotFound, id)
		}
		return ipc.OK("", entry)

	case ipc.CmdPaste:
		id, ok := req.StringArg("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		if err := d.coordinator.ReplayByID(id); err != nil {
			return ipc.Errorf("paste failed: %v", err)
		}
		return ipc.OK("pasted", nil)

	case ipc.CmdPasteText:
		text, ok := req.StringArg("text")
		if !ok || text == "" {
			return ipc.Errorf("missing text")
		}
		if err := d.coordinator.PasteLiteral(text); err != nil {
			return ipc.Errorf("paste failed: %v", err)
		}
		return ipc.OK("pasted", nil)

	case ipc.CmdPin:
		id, ok := req.StringArg("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		entry, found := d.history.TogglePin(id)
		if !found {
			return ipc.Errorf("%v: %s", clipboard.ErrEntryNotFound, id)
		}
		return ipc.OK("", entry)

	case ipc.CmdRemove:
		id, ok := req.StringArg("id")
		if !ok {
			return ipc.Errorf("missing id")
		}
		if !d.history.Remove(id) {
			return ipc.Errorf("%v: %s", clipboard.ErrEntryNotFound, id)
		}
		return ipc.OK("removed", nil)

	case ipc.CmdClear:
		d.history.Clear()
		return ipc.OK("cleared unpinned entries", nil)

	case ipc.CmdStatus:
		return ipc.OK("", d.status())

	default:
		return ipc.Errorf("unknown command %q", req.Command)
	}
}

func (d *Daemon) status() Status {
	entries := d.history.GetAll()
	st := Status{
		PID:           os.Getpid(),
		StartedAt:     d.startedAt,
		Entries:       len(entries),
		Pinned:        countPinned(entries),
		MaxSize:       d.cfg.History.MaxSize,
		Backend:       d.backend,
		Tiers:         d.tiers,
		Keyboards:     d.listener.Active(),
		PickerRunning: d.picker.Running(),
	}
	if !d.startedAt.IsZero() {
		st.Uptime = time.Since(d.startedAt).Round(time.Second).String()
	}
	if d.store != nil {
		stats, err := d.store.Stats()
		if err == nil {
			st.Storage = &stats
		} else if !errors.Is(err, storage.ErrClosed) {
			d.logger.Debug("Failed to read storage stats", zap.Error(err))
		}
	}
	return st
}

func countPinned(entries []types.ClipboardEntry) int {
	n := 0
	for _, e := range entries {
		if e.Pinned {
			n++
		}
	}
	return n
}
