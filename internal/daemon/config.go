// Package daemon manages the tcf daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Chef         ChefConfig         `toml:"chef"`
	Auth         AuthConfig         `toml:"auth"`
	Gamification GamificationConfig `toml:"gamification"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
	Logging      LoggingConfig      `toml:"logging"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DatabaseConfig controls SQLite storage.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

// ChefConfig points at the menu-generation service.
type ChefConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AuthConfig controls token issuing.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	Issuer        string `toml:"issuer"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

// GamificationConfig tunes notification timing.
type GamificationConfig struct {
	LevelUpDelayMS    int `toml:"level_up_delay_ms"`
	NotificationTTLMS int `toml:"notification_ttl_ms"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := tcfHome()
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        3001,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Dir: homeDir,
		},
		Chef: ChefConfig{
			URL:            "http://127.0.0.1:8787",
			TimeoutSeconds: 60,
		},
		Auth: AuthConfig{
			Issuer:        "tcf",
			TokenTTLHours: 30 * 24,
		},
		Gamification: GamificationConfig{
			LevelUpDelayMS:    1500,
			NotificationTTLMS: 3000,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "tcf.log"),
		},
	}
}

// LoadConfig reads config from ~/.tcf/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(tcfHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if secret := os.Getenv("TCF_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.tcf/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(tcfHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// tcfHome returns the tcf data directory.
func tcfHome() string {
	if env := os.Getenv("TCF_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tcf")
}

// TcfHome is exported for use by other packages.
func TcfHome() string {
	return tcfHome()
}
