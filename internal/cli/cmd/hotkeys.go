package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/berrythewa/clipdeck/internal/evdev"
	"github.com/berrythewa/clipdeck/internal/hotkey"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHotkeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotkeys",
		Short: "Inspect the global shortcut listener",
		Long: `Inspect the keyboards the global shortcut listener reads.

Reading /dev/input/event* usually needs membership of the "input" group.`,
	}

	cmd.AddCommand(newHotkeysDevicesCmd())
	cmd.AddCommand(newHotkeysWatchCmd())
	return cmd
}

type deviceInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func newHotkeysDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the keyboards that would be listened on",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := evdev.FindKeyboards(cfg.Hotkeys.DeviceDir, logger)
			if err != nil {
				return err
			}

			infos := make([]deviceInfo, 0, len(devices))
			for _, d := range devices {
				infos = append(infos, deviceInfo{Path: d.Path(), Name: d.Name()})
				if err := d.Close(); err != nil {
					logger.Debug("Failed to close device", zap.String("path", d.Path()), zap.Error(err))
				}
			}

			if useJSON {
				return printJSON(cmd, infos)
			}
			if len(infos) == 0 {
				printf(cmd, "No readable keyboard under %s\n", cfg.Hotkeys.DeviceDir)
				return nil
			}
			for _, info := range infos {
				printf(cmd, "%s\t%s\n", info.Path, info.Name)
			}
			return nil
		},
	}
}

func newHotkeysWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print recognized shortcuts until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchHotkeys(ctx, cmd, hotkey.Options{DeviceDir: cfg.Hotkeys.DeviceDir})
		},
	}
}

func watchHotkeys(ctx context.Context, cmd *cobra.Command, opts hotkey.Options) error {
	actions := make(chan hotkey.Action, 8)
	listener := hotkey.NewListener(opts, func(a hotkey.Action) {
		select {
		case actions <- a:
		default:
		}
	}, logger)

	if err := listener.Start(); err != nil {
		if errors.Is(err, hotkey.ErrNoKeyboards) {
			return errors.New("no readable keyboard found, check permissions on " + opts.DeviceDir)
		}
		return err
	}
	defer listener.Stop()

	printf(cmd, "Listening on %d keyboard(s), press Super+V, Ctrl+Alt+V or Escape\n", listener.Active())
	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-actions:
			printf(cmd, "%s\n", a)
		}
	}
}
