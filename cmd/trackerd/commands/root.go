// Package commands implements the trackerd CLI commands.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/cmd/trackerd/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "trackerd",
	Short: "trackerd - peer-to-peer file index and session tracker",
	Long: `trackerd is the tracker daemon of a peer-to-peer file sharing system.
It authenticates peers, tracks which of them are currently connected, and
indexes the files they advertise, so that peers can find each other and
exchange files directly without the tracker touching any file content.

Use "trackerd [command] --help" for more information about a command.`,
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
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
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
		cmd.Printf("trackerd %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}
