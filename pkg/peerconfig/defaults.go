package peerconfig

import "time"

// ApplyDefaults fills in zero-valued fields with sane defaults. Called after
// unmarshalling a config file so that a partial file only overrides what it
// specifies.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTrackerDefaults(&cfg.Tracker)
	applyTransferDefaults(&cfg.Transfer)

	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
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

func applyTrackerDefaults(cfg *TrackerConfig) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
}

func applyTransferDefaults(cfg *TransferConfig) {
	if cfg.ListenHost == "" {
		cfg.ListenHost = "0.0.0.0"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 9512
	}
}

// GetDefaultConfig returns a Config populated entirely with default values,
// used when no config file is found.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
