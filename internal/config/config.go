// ABOUTME: Workouts configuration loaded from file, environment and defaults.
// ABOUTME: Backed by a viper instance; builds the token source and data paths.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/workouts/internal/auth"
	"github.com/harperreed/workouts/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. WORKOUTS_AUTH_TOKEN.
const EnvPrefix = "WORKOUTS"

// Config stores workouts tool configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`

	// File is the config file that was read, empty if none existed.
	File string `mapstructure:"-"`
}

// ServerConfig locates the remote schedule API.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig supplies the bearer token. TokenFile wins over Token.
type AuthConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`
}

// SyncConfig controls the staleness gate.
type SyncConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// StorageConfig locates the local cache.
type StorageConfig struct {
	// DataDir holds workouts.db and the state/ directory.
	// Supports ~ expansion. Defaults to ~/.local/share/workouts.
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig selects log level and an optional rotating log file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:3000/api")
	v.SetDefault("server.timeout", "15s")
	v.SetDefault("auth.token", "")
	v.SetDefault("auth.token_file", "")
	v.SetDefault("sync.refresh_interval", "72h")
	v.SetDefault("sync.timeout", "30s")
	v.SetDefault("storage.data_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "workouts", "config.yaml")
}

// Load reads config from path (or the default path when empty), then
// applies WORKOUTS_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		file = path
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid server.base_url %q", c.Server.BaseURL)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Sync.RefreshInterval <= 0 {
		return fmt.Errorf("sync.refresh_interval must be positive, got %s", c.Sync.RefreshInterval)
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync.timeout must be positive, got %s", c.Sync.Timeout)
	}
	return nil
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.Storage.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.Storage.DataDir)
}

// DBPath returns the SQLite cache path.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "workouts.db")
}

// StateDir returns the directory of the last-sync marker store.
func (c *Config) StateDir() string {
	return filepath.Join(c.GetDataDir(), "state")
}

// TokenSource builds the bearer token source from the auth settings.
func (c *Config) TokenSource(opts ...auth.Option) auth.Source {
	if c.Auth.TokenFile != "" {
		return auth.File(ExpandPath(c.Auth.TokenFile), opts...)
	}
	return auth.Static(c.Auth.Token, opts...)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
