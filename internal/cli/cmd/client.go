package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/spf13/cobra"
)

// call sends one request to the daemon and decodes the reply into v
func call(req *ipc.Request, v interface{}) (*ipc.Response, error) {
	resp, err := ipc.SendRequest(cfg.IPC.SocketPath, req)
	if err != nil {
		return nil, fmt.Errorf("%w (is the daemon running? try 'clipdeck daemon run')", err)
	}
	if err := resp.Decode(v); err != nil {
		return resp, err
	}
	return resp, nil
}

func fetchHistory() ([]types.ClipboardEntry, error) {
	var entries []types.ClipboardEntry
	_, err := call(ipc.NewRequest(ipc.CmdHistory), &entries)
	return entries, err
}

// resolveID expands a unique id prefix, as printed by 'history list', to the
// full entry id
func resolveID(prefix string) (string, error) {
	entries, err := fetchHistory()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, e := range entries {
		if e.ID == prefix {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			matches = append(matches, e.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no history entry matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMessage prints the daemon's message unless --quiet
func printMessage(cmd *cobra.Command, resp *ipc.Response, fallback string) {
	if quiet {
		return
	}
	msg := fallback
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}
	printf(cmd, "%s\n", msg)
}
