package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tjorvi/jujutsuka/pkg/pipeline"
	"github.com/tjorvi/jujutsuka/pkg/vcs/jj"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s", cfg.Server.Addr)
	}
	if cfg.Log.Revset != jj.DefaultRevset {
		t.Errorf("Revset = %s", cfg.Log.Revset)
	}
	if cfg.Log.Limit != pipeline.DefaultLimit {
		t.Errorf("Limit = %d", cfg.Log.Limit)
	}
	if cfg.Render.Theme != pipeline.DefaultTheme {
		t.Errorf("Theme = %s", cfg.Render.Theme)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9000"

[cache]
redis_url = "redis://localhost:6379/1"

[store]
mongo_uri = "mongodb://localhost:27017"

[render]
theme = "dark"

[log]
limit = 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %s", cfg.Server.Addr)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %s", cfg.Cache.RedisURL)
	}
	if cfg.Store.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %s", cfg.Store.MongoURI)
	}
	if cfg.Render.Theme != "dark" {
		t.Errorf("Theme = %s", cfg.Render.Theme)
	}
	if cfg.Log.Limit != 250 {
		t.Errorf("Limit = %d", cfg.Log.Limit)
	}

	// Unset sections keep their defaults.
	if cfg.Log.Revset != jj.DefaultRevset {
		t.Errorf("Revset default lost: %s", cfg.Log.Revset)
	}
	if cfg.Store.Database != appName {
		t.Errorf("Database default lost: %s", cfg.Store.Database)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddr ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestLoadConfigOrDefaultMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := LoadConfigOrDefault()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s, want default", cfg.Server.Addr)
	}
}
