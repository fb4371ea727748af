package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a trackerd configuration file",
	Long: `Load the configuration file and report whether it satisfies the
limits and formats trackerd requires, running the exact same Validate pass
trackerd runs at startup.`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	cmd.Println("Configuration is valid")
	return nil
}
