// Package cli implements the command-line interface for clipdeck
package cli

import (
	"fmt"
	"os"

	cmdpkg "github.com/berrythewa/clipdeck/internal/cli/cmd"
)

// SetVersionInfo records build information for the version command
func SetVersionInfo(version, buildTime, commit string) {
	cmdpkg.SetVersionInfo(version, buildTime, commit)
}

// Execute runs the clipdeck command line
func Execute() {
	cmdpkg.Execute()
}

// ExecuteDaemon runs 'daemon run' with the process arguments appended, so
// that flags such as --config and --verbose keep working
func ExecuteDaemon() {
	root := cmdpkg.NewRootCmd()
	root.SetArgs(append([]string{"daemon", "run"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
