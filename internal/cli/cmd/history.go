package cmd

import (
	"fmt"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/format"
	"github.com/spf13/cobra"
)

// newHistoryCmd creates the history command with all subcommands
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage clipboard history",
		Long: `Manage clipboard history:
  • List history entries, newest first
  • Show, pin, or delete single entries by id or id prefix
  • Clear every unpinned entry`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryPinCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

// newHistoryListCmd creates the list subcommand
func newHistoryListCmd() *cobra.Command {
	var (
		limit    int
		compact  bool
		noColors bool
		maxLines int
		maxWidth int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clipboard history",
		Long: `List clipboard history entries.

Examples:
  clipdeck history list              # Show the last 10 entries
  clipdeck history list -n 0         # Show every entry
  clipdeck history list --compact    # One line per entry`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := format.DefaultOptions()
			if compact {
				opts = format.CompactOptions()
			}
			opts = opts.ForWriter(out(cmd))
			if noColors {
				opts.UseColors = false
			}
			if maxLines > 0 {
				opts.MaxLines = maxLines
			}
			if maxWidth > 0 {
				opts.MaxWidth = maxWidth
			}

			var entries []types.ClipboardEntry
			if _, err := call(ipc.NewRequest(ipc.CmdHistory, "limit", limit), &entries); err != nil {
				return err
			}

			if useJSON {
				return printJSON(cmd, entries)
			}
			printf(cmd, "%s\n", format.FormatEntryList(entries, opts))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "one line per entry")
	cmd.Flags().BoolVar(&noColors, "no-color", false, "disable colored output")
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "maximum lines of content per entry")
	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "maximum width of content lines")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one history entry",
		Long: `Show one history entry. With --raw the text, or the PNG bytes of an
image, are written to stdout unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}

			var entry types.ClipboardEntry
			if _, err := call(ipc.NewRequest(ipc.CmdGet, "id", id), &entry); err != nil {
				return err
			}

			switch {
			case useJSON:
				return printJSON(cmd, entry)
			case raw:
				return writeRaw(cmd, &entry)
			default:
				opts := format.DefaultOptions().ForWriter(out(cmd))
				opts.MaxLines = 0
				opts.MaxWidth = 0
				printf(cmd, "%s\n", format.FormatEntry(&entry, opts))
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the content only")
	return cmd
}

func writeRaw(cmd *cobra.Command, entry *types.ClipboardEntry) error {
	if entry.Content.Type == types.TypeImage {
		if entry.Content.Image == nil {
			return fmt.Errorf("%w: image entry without data", clipboard.ErrDecode)
		}
		png, err := clipboard.DecodeImage(entry.Content.Image.Base64)
		if err != nil {
			return err
		}
		_, err = out(cmd).Write(png)
		return err
	}
	_, err := fmt.Fprint(out(cmd), entry.Content.Text)
	return err
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete history entries, pinned or not",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := resolveID(arg)
				if err != nil {
					return err
				}
				resp, err := call(ipc.NewRequest(ipc.CmdRemove, "id", id), nil)
				if err != nil {
					return err
				}
				printMessage(cmd, resp, "removed")
			}
			return nil
		},
	}
}

func newHistoryPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle the pinned flag of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}
			var entry types.ClipboardEntry
			if _, err := call(ipc.NewRequest(ipc.CmdPin, "id", id), &entry); err != nil {
				return err
			}
			if useJSON {
				return printJSON(cmd, entry)
			}
			state := "unpinned"
			if entry.Pinned {
				state = "pinned"
			}
			printf(cmd, "%s %s\n", format.ShortID(entry.ID), state)
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every unpinned entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(ipc.NewRequest(ipc.CmdClear), nil)
			if err != nil {
				return err
			}
			printMessage(cmd, resp, "cleared")
			return nil
		},
	}
}
