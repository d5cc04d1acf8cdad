package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set by main
var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

// SetVersionInfo allows setting version info from outside
func SetVersionInfo(v, bt, c string) {
	version = v
	buildTime = bt
	commit = c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if useJSON {
				return printJSON(cmd, map[string]string{
					"version":    version,
					"build_time": buildTime,
					"commit":     commit,
					"go":         runtime.Version(),
				})
			}
			printf(cmd, "clipdeck\n")
			printf(cmd, "Version:    %s\n", version)
			printf(cmd, "Build Time: %s\n", buildTime)
			printf(cmd, "Commit:     %s\n", commit)
			printf(cmd, "Go:         %s\n", runtime.Version())
			return nil
		},
	}
}
