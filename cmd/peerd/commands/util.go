package commands

import (
	"fmt"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/peerconfig"
)

// InitLogger initializes the process-wide structured logger from cfg.
func InitLogger(cfg *peerconfig.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
