// Package peerconfig loads the peerd process configuration: where the
// tracker lives, this peer's credentials and advertised address, and the
// local directories it serves files from and downloads files into.
package peerconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the peerd configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (PEERD_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// When no configuration file is found, Load returns the defaults as they
// are; environment variables are not applied in that case.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Tracker configures how this peer reaches the tracker's RPC surface.
	Tracker TrackerConfig `mapstructure:"tracker" yaml:"tracker"`

	// Identity is this peer's name, password, and advertised listen address.
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`

	// Transfer configures the Peer Listener and Peer Downloader.
	Transfer TransferConfig `mapstructure:"transfer" yaml:"transfer"`

	// HeartbeatInterval is how often peerd sends sendHeartBeat to the tracker.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0" yaml:"heartbeat_interval"`

	// ShutdownTimeout bounds graceful shutdown of the Peer Listener.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TrackerConfig configures the tracker RPC client.
type TrackerConfig struct {
	// URL is the tracker's base RPC URL, e.g. http://tracker.example.com:8080.
	URL string `mapstructure:"url" validate:"required,max=200" yaml:"url"`

	// RequestTimeout bounds a single tracker RPC round trip.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0" yaml:"request_timeout"`
}

// IdentityConfig is this peer's login credentials and advertised address.
type IdentityConfig struct {
	// Name is this peer's user name, per the tracker's Input Length Caps.
	Name string `mapstructure:"name" validate:"required,min=5,max=25" yaml:"name"`

	// Password authenticates Name against the tracker.
	Password string `mapstructure:"password" validate:"required,min=6,max=50" yaml:"password"`

	// AdvertiseIP is the address other peers should dial to reach this peer's
	// Peer Listener; reported to the tracker on login.
	AdvertiseIP string `mapstructure:"advertise_ip" validate:"required" yaml:"advertise_ip"`
}

// TransferConfig configures the Peer Listener and Peer Downloader.
type TransferConfig struct {
	// ListenHost/ListenPort is where this peer's Peer Listener binds.
	ListenHost string `mapstructure:"listen_host" yaml:"listen_host"`
	ListenPort int    `mapstructure:"listen_port" validate:"required,min=1,max=65535" yaml:"listen_port"`

	// ServeDir is the directory the Peer Sender serves files from.
	ServeDir string `mapstructure:"serve_dir" validate:"required" yaml:"serve_dir"`

	// DownloadDir is the directory the Peer Downloader writes into.
	DownloadDir string `mapstructure:"download_dir" validate:"required" yaml:"download_dir"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please create a configuration file first, then run:\n"+
				"  peerd serve --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("PEERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(durationDecodeHook())
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "peerd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "peerd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the CLI).
func GetConfigDir() string {
	return getConfigDir()
}
