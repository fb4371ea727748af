package config

import (
	"time"

	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// ApplyDefaults fills in zero-valued fields with sane defaults. Called after
// unmarshalling a config file so that a partial file only overrides what it
// specifies.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyDatabaseDefaults(&cfg.Database)
	applyRPCDefaults(&cfg.RPC)
	applyMetricsDefaults(&cfg.Metrics)
	applyLimitsDefaults(&cfg.Limits)
	applyReaperDefaults(&cfg.Reaper)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyDatabaseDefaults(cfg *trackerstore.Config) {
	cfg.ApplyDefaults()
}

func applyRPCDefaults(cfg *RPCConfig) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyLimitsDefaults(cfg *LimitsConfig) {
	if cfg.MaxUsers == 0 {
		cfg.MaxUsers = 50
	}
	if cfg.MaxFilesPerUser == 0 {
		cfg.MaxFilesPerUser = 10
	}
}

func applyReaperDefaults(cfg *ReaperConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EvictionThreshold == 0 {
		cfg.EvictionThreshold = 120 * time.Second
	}
}

// GetDefaultConfig returns a Config populated entirely with default values,
// used when no config file is found.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
