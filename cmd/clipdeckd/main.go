package main

import (
	"github.com/berrythewa/clipdeck/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

func main() {
	cli.SetVersionInfo(version, buildTime, commit)

	// Equivalent to 'clipdeck daemon run'
	cli.ExecuteDaemon()
}
