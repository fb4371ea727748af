// Command trackerd is the tracker daemon: it authenticates peers, tracks
// which are connected, and indexes the files they advertise.
package main

import (
	"fmt"
	"os"

	"github.com/nilsio/trackerd/cmd/trackerd/commands"
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
