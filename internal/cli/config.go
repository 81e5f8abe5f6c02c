package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tjorvi/jujutsuka/pkg/pipeline"
	"github.com/tjorvi/jujutsuka/pkg/vcs/jj"
)

// Config is the on-disk CLI configuration, read from
// ~/.config/jujutsuka/config.toml when present.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig configures the pipeline result cache.
type CacheConfig struct {
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`

	// RedisURL switches the cache backend to Redis when set,
	// e.g. "redis://localhost:6379/0".
	RedisURL string `toml:"redis_url"`
}

// StoreConfig configures snapshot persistence.
type StoreConfig struct {
	// MongoURI enables the Mongo snapshot store when set.
	MongoURI string `toml:"mongo_uri"`

	// Database is the Mongo database name.
	Database string `toml:"database"`
}

// RenderConfig configures artifact rendering.
type RenderConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig configures the default commit window.
type LogConfig struct {
	Revset string `toml:"revset"`
	Limit  int    `toml:"limit"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Database: appName},
		Render: RenderConfig{Theme: pipeline.DefaultTheme},
		Log:    LogConfig{Revset: jj.DefaultRevset, Limit: pipeline.DefaultLimit},
	}
}

// ConfigPath returns the config file location using the XDG standard.
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the config file at path, layering it over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the user's config file, falling back to the
// defaults when it does not exist or cannot be read.
func LoadConfigOrDefault() Config {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig()
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}
