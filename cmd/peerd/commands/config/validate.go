package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/pkg/peerconfig"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file and report whether it satisfies the
limits and formats peerd requires, without logging into the tracker.`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := peerconfig.MustLoad(configPath)
	if err != nil {
		return err
	}

	if err := peerconfig.Validate(cfg); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	cmd.Println("Configuration is valid")
	return nil
}
