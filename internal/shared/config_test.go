package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./rba.db" {
			t.Errorf("expected database path ./rba.db, got %s", config.Database.Path)
		}

		if config.Log.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Log.Level)
		}

		if config.Events.MaxDepth != 32 {
			t.Errorf("expected events max depth 32, got %d", config.Events.MaxDepth)
		}

		if config.Scoring.Seed != 0 {
			t.Errorf("expected scoring seed 0, got %d", config.Scoring.Seed)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		err = CreateConfigFile(configPath)
		if !errors.Is(err, os.ErrExist) {
			t.Errorf("creating config file again should fail with os.ErrExist, got %v", err)
		}
		if err != nil && strings.Contains(err.Error(), "%!") {
			t.Errorf("malformed error message: %q", err.Error())
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 4
max_idle_conns = 2

[log]
level = "debug"

[scoring]
seed = 42
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}

		if config.Scoring.Seed != 42 {
			t.Errorf("expected seed 42, got %d", config.Scoring.Seed)
		}

		if config.Events.MaxDepth != 32 {
			t.Errorf("missing keys should keep defaults, got max depth %d", config.Events.MaxDepth)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[log]
level = "loud"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		tmpDir := t.TempDir()
		envPath := filepath.Join(tmpDir, ".env")

		if err := os.WriteFile(envPath, []byte("RBA_LOG_LEVEL=WARN\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvDatabasePath, "/env/path.db")
		t.Setenv(EnvLogLevel, "")
		os.Unsetenv(EnvLogLevel)

		config := DefaultConfig()
		config.ApplyEnv(envPath)

		if config.Database.Path != "/env/path.db" {
			t.Errorf("expected database path from env, got %s", config.Database.Path)
		}
		if config.Log.Level != "warn" {
			t.Errorf("expected log level warn from .env, got %s", config.Log.Level)
		}
	})
}
