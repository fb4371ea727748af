// Command trackerctl is a thin control CLI over the tracker's already-public
// RPC and health surface: it does not start, stop, or otherwise reach into
// the trackerd process, it only queries what trackerd already exposes.
package main

import (
	"fmt"
	"os"

	"github.com/nilsio/trackerd/cmd/trackerctl/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
