// Command patcheck is the operator CLI: imports, migrations, one-off
// analyses and report listings.
package main

import (
	"os"

	"github.com/BillWilson/pat-checker/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
