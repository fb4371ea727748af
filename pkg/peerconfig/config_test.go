package peerconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

tracker:
  url: "http://127.0.0.1:8080"

identity:
  name: "alicepeer"
  password: "hunter22"
  advertise_ip: "10.0.0.5"

transfer:
  listen_port: 9512
  serve_dir: "` + filepath.ToSlash(tmpDir) + `/serve"
  download_dir: "` + filepath.ToSlash(tmpDir) + `/downloads"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("expected default heartbeat interval 30s, got %v", cfg.HeartbeatInterval)
	}
	if cfg.Transfer.ListenHost != "0.0.0.0" {
		t.Errorf("expected default listen host 0.0.0.0, got %q", cfg.Transfer.ListenHost)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("expected no error when loading default config, got: %v", err)
	}
	if cfg.Transfer.ListenPort != 9512 {
		t.Errorf("expected default listen port 9512, got %d", cfg.Transfer.ListenPort)
	}
}

func TestLoad_MissingRequiredFieldsFailsValidation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
tracker:
  url: "http://127.0.0.1:8080"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for missing identity/transfer fields, got nil")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved.yaml")

	cfg := GetDefaultConfig()
	cfg.Identity.Name = "bobpeer"
	cfg.Identity.Password = "hunter22"
	cfg.Identity.AdvertiseIP = "10.0.0.9"
	cfg.Tracker.URL = "http://127.0.0.1:8080"
	cfg.Transfer.ServeDir = filepath.Join(tmpDir, "serve")
	cfg.Transfer.DownloadDir = filepath.Join(tmpDir, "downloads")

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Identity.Name != "bobpeer" {
		t.Errorf("expected reloaded identity name 'bobpeer', got %q", loaded.Identity.Name)
	}
}
