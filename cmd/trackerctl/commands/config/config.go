// Package config implements trackerctl's configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect and validate a trackerd configuration file against the same
rules trackerd itself enforces at startup, without needing a running daemon.

Subcommands:
  validate  Validate a configuration file
  show      Display the effective configuration`,
}

func init() {
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(showCmd)
}
