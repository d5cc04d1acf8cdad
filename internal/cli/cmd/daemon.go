package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/berrythewa/clipdeck/internal/daemon"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/pkg/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newDaemonCmd creates the daemon command
func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the clipdeck daemon",
		Long: `Manage the daemon that records clipboard history, listens for the
global shortcut and serves the control socket.`,
	}

	cmd.AddCommand(newDaemonRunCmd())
	cmd.AddCommand(newDaemonStatusCmd())
	cmd.AddCommand(newDaemonStopCmd())

	return cmd
}

func newDaemonRunCmd() *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:         "run",
		Short:       "Run the daemon",
		Annotations: map[string]string{"daemon": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if detach {
				return startDetached(cmd)
			}
			return RunDaemon()
		},
	}

	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "run in the background")
	return cmd
}

// RunDaemon runs the daemon in the foreground until SIGINT or SIGTERM
func RunDaemon() error {
	if pid, err := daemon.ReadPID(daemon.PIDFilePath(cfg)); err == nil && pid != os.Getpid() {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer logger.Sync()
	return d.Run(ctx)
}

func startDetached(cmd *cobra.Command) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"daemon", "run"}
	if configFile != "" {
		args = append(args, "--config", configFile)
	}
	if verbose {
		args = append(args, "--verbose")
	}

	logFile := filepath.Join(cfg.SystemPaths.LogDir, "clipdeck-daemon.out")
	pid, err := daemon.Detach(executable, args, logFile, logger)
	if err != nil {
		return err
	}
	logger.Info("Daemon started in background", zap.Int("pid", pid), zap.String("output", logFile))
	printf(cmd, "clipdeck daemon started with PID %d\n", pid)
	return nil
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st daemon.Status
			resp, err := ipc.SendRequest(cfg.IPC.SocketPath, ipc.NewRequest(ipc.CmdStatus))
			if err == nil {
				err = resp.Decode(&st)
			}
			if err != nil {
				logger.Debug("Status request failed", zap.Error(err))
				if useJSON {
					return printJSON(cmd, map[string]interface{}{"running": false})
				}
				printf(cmd, "clipdeck daemon is not running\n")
				return nil
			}

			if useJSON {
				return printJSON(cmd, st)
			}
			printf(cmd, "%s\n", format.FormatStats("clipdeck daemon", statusRows(st), format.DefaultOptions().ForWriter(out(cmd))))
			return nil
		},
	}
}

func statusRows(st daemon.Status) []format.Stat {
	tiers := strings.Join(st.Tiers, ", ")
	if tiers == "" {
		tiers = "none"
	}
	rows := []format.Stat{
		{Label: "PID", Value: strconv.Itoa(st.PID)},
		{Label: "Uptime", Value: st.Uptime},
		{Label: "Entries", Value: fmt.Sprintf("%d / %d (%d pinned)", st.Entries, st.MaxSize, st.Pinned)},
		{Label: "Clipboard", Value: st.Backend},
		{Label: "Paste tiers", Value: tiers},
		{Label: "Keyboards", Value: strconv.Itoa(st.Keyboards)},
		{Label: "Picker open", Value: strconv.FormatBool(st.PickerRunning)},
	}
	if st.Storage != nil {
		rows = append(rows, format.Stat{
			Label: "Database",
			Value: fmt.Sprintf("%s (%s)", st.Storage.Path, format.FormatSize(st.Storage.Bytes)),
		})
	}
	return rows
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := daemon.Stop(cfg)
			if errors.Is(err, daemon.ErrNotRunning) {
				printf(cmd, "clipdeck daemon is not running\n")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			printf(cmd, "Sent stop signal to PID %d\n", pid)
			return nil
		},
	}
}
