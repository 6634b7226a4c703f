package fastlap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		config, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yml"))

		if err != nil {
			t.Fatalf("could not read config: %s", err)
		}

		if config.HTTP.Port != 8772 || config.Store.Type != "bolt" {
			t.Errorf("defaults = %+v", config)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")

		contents := []byte("http:\n  port: 9000\nstore:\n  type: json\n  path: ./data\nleaderboard:\n  gap_on_create: true\n")

		if err := os.WriteFile(path, contents, 0644); err != nil {
			t.Fatalf("could not write config file: %s", err)
		}

		config, err := ReadConfig(path)

		if err != nil {
			t.Fatalf("could not read config: %s", err)
		}

		if config.HTTP.Port != 9000 {
			t.Errorf("Port = %d, expected 9000", config.HTTP.Port)
		}

		if config.Store.Type != "json" || config.Store.Path != "./data" {
			t.Errorf("store config = %+v", config.Store)
		}

		if !config.Leaderboard.GapOnCreate {
			t.Error("GapOnCreate not set")
		}

		// untouched sections keep their defaults
		if config.Uploads.MaxSizeMB != 10 {
			t.Errorf("MaxSizeMB = %d, expected 10", config.Uploads.MaxSizeMB)
		}
	})

	t.Run("unreadable yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")

		if err := os.WriteFile(path, []byte("{{{"), 0644); err != nil {
			t.Fatalf("could not write config file: %s", err)
		}

		if _, err := ReadConfig(path); err == nil {
			t.Error("expected an error for malformed yaml")
		}
	})
}
