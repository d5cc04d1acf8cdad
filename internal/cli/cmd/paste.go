package cmd

import (
	"errors"

	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/spf13/cobra"
)

func newPasteCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "paste [id]",
		Short: "Paste a history entry, or literal text, into the focused window",
		Long: `Write a history entry back to the clipboard and send Ctrl+V to the
focused application. The replay is not recorded as a new entry.

With --text the given string is pasted instead and never enters history.`,
		Example: `  clipdeck paste 3f2a91c0
  clipdeck paste --text "→"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req *ipc.Request
			switch {
			case text != "" && len(args) > 0:
				return errors.New("give either an id or --text, not both")
			case text != "":
				req = ipc.NewRequest(ipc.CmdPasteText, "text", text)
			case len(args) == 1:
				id, err := resolveID(args[0])
				if err != nil {
					return err
				}
				req = ipc.NewRequest(ipc.CmdPaste, "id", id)
			default:
				return errors.New("an entry id or --text is required")
			}

			resp, err := call(req, nil)
			if err != nil {
				return err
			}
			printMessage(cmd, resp, "pasted")
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "paste this text without recording it")
	return cmd
}
