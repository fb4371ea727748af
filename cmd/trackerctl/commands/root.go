// Package commands implements the trackerctl CLI commands.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/cmd/trackerctl/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "trackerctl",
	Short: "trackerctl - thin control CLI for trackerd",
	Long: `trackerctl exercises trackerd's already-public RPC and health
surface: checking status and validating a configuration file against the
same rules the daemon enforces at startup. It does not start, stop, or set
the daemon's capacity; those remain operator actions against the process
itself.

Use "trackerctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/trackerd/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// Exit prints an error to stderr and exits with code 1.
func Exit(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
	os.Exit(1)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("trackerctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}
