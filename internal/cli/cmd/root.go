package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/berrythewa/clipdeck/internal/common"
	"github.com/berrythewa/clipdeck/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// skipConfigLoad marks commands that must not create the config file
const skipConfigLoad = "skip-config-load"

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool
	useJSON    bool

	// Shared resources, set before any subcommand runs
	cfg    *config.Config
	logger *zap.Logger
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clipdeck",
		Short: "Clipboard history with global hotkeys and paste injection",
		Long: `clipdeck keeps a history of what you copy and pastes it back on demand:
  • Text and image clipboard history with pinning
  • Global Super+V / Ctrl+Alt+V shortcut read from raw keyboard devices
  • Synthetic Ctrl+V through uinput, an input library or xdotool`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/clipdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimize output")
	rootCmd.PersistentFlags().BoolVar(&useJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newPasteCmd(),
		newHotkeysCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on error
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipConfigLoad] == "true" {
		cfg = config.DefaultConfig()
	} else {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	var err error
	logger, err = common.NewLogger(cfg, common.LoggerOptions{
		Verbose: verbose,
		Quiet:   quiet,
		Daemon:  cmd.Annotations["daemon"] == "true",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// printf writes to the command's output, which tests capture
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
