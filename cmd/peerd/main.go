// Command peerd is the per-peer process: it logs into a tracker, advertises
// its registered files, serves them to other peers over the peer transfer
// protocol, and can fetch files other peers advertise.
package main

import (
	"fmt"
	"os"

	"github.com/nilsio/trackerd/cmd/peerd/commands"
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
