// Package config loads service settings from environment variables and an
// optional config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the directory service settings.
type Config struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	RegistryPath string        `mapstructure:"registry_path"`
	ScanInterval time.Duration `mapstructure:"scan_interval"`
	LogLevel     string        `mapstructure:"log_level"`

	// Discovery source toggles. The spooler source is always used where
	// the platform supports it.
	EnableUSB    bool `mapstructure:"enable_usb"`
	EnableSerial bool `mapstructure:"enable_serial"`
}

// Load reads configuration from PRINTDIR_* environment variables and, when
// present, a printdir.yaml next to the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRINTDIR")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", "localhost:12213")
	v.SetDefault("registry_path", defaultRegistryPath())
	v.SetDefault("scan_interval", 5*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("enable_usb", true)
	v.SetDefault("enable_serial", true)

	v.SetConfigName("printdir")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ScanInterval <= 0 {
		return nil, fmt.Errorf("scan_interval must be positive, got %s", cfg.ScanInterval)
	}

	return &cfg, nil
}

// defaultRegistryPath puts the registry in the user config directory,
// falling back to the working directory.
func defaultRegistryPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		appDir := filepath.Join(dir, "printer-directory")
		if err := os.MkdirAll(appDir, 0o755); err == nil {
			return filepath.Join(appDir, "printer_registry.json")
		}
	}
	return "printer_registry.json"
}
