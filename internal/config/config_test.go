package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
default_profile: travel
profiles:
  - name: home
    url: http://provider.example:8080
    username: alice
    password: secret
  - name: travel
    url: http://other.example
    username: bob
    password: hunter2
search:
  chunk_size: 25
logging:
  level: DEBUG
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !cfg.IsConfigured() {
		t.Error("expected config to be configured")
	}
	if cfg.DefaultProfile != "travel" {
		t.Errorf("DefaultProfile = %q", cfg.DefaultProfile)
	}
	if names := cfg.ProfileNames(); len(names) != 2 || names[0] != "home" {
		t.Errorf("ProfileNames() = %v", names)
	}
	home, ok := cfg.Profile("home")
	if !ok || home.Username != "alice" || home.URL != "http://provider.example:8080" {
		t.Errorf("Profile(home) = %+v, %v", home, ok)
	}
	if cfg.Search.ChunkSize != 25 {
		t.Errorf("ChunkSize = %d, want 25", cfg.Search.ChunkSize)
	}
	// Unset values keep their defaults
	if cfg.Search.Suggestions != 5 {
		t.Errorf("Suggestions = %d, want default 5", cfg.Search.Suggestions)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestSaveConfigToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.UpsertProfile(ProfileConfig{Name: "home", URL: "http://a", Username: "u", Password: "p"})
	cfg.UpsertProfile(ProfileConfig{Name: "home", URL: "http://b", Username: "u2", Password: "p2"})
	cfg.Store.NoPersist = true

	if err := SaveConfigTo(cfg, path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(loaded.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(loaded.Profiles))
	}
	if loaded.Profiles[0].URL != "http://b" {
		t.Errorf("upsert did not replace profile: %+v", loaded.Profiles[0])
	}
	if loaded.StoreDir() != "" {
		t.Errorf("StoreDir() = %q, want memory-only", loaded.StoreDir())
	}
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Run("over file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
search:
  chunk_size: 10
logging:
  level: INFO
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		t.Setenv("XCVIEW_LOGGING_LEVEL", "DEBUG")
		t.Setenv("XCVIEW_SEARCH_CHUNK_SIZE", "25")

		cfg, err := LoadConfigFrom(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Logging.Level != "DEBUG" {
			t.Errorf("Logging.Level = %q, want DEBUG", cfg.Logging.Level)
		}
		if cfg.Search.ChunkSize != 25 {
			t.Errorf("ChunkSize = %d, want 25", cfg.Search.ChunkSize)
		}
	})

	t.Run("without config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.yaml")
		t.Setenv("XCVIEW_LOGGING_LEVEL", "WARN")
		t.Setenv("XCVIEW_SEARCH_CHUNK_SIZE", "40")
		t.Setenv("XCVIEW_STORE_NO_PERSIST", "true")

		cfg, err := LoadConfigFrom(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Logging.Level != "WARN" {
			t.Errorf("Logging.Level = %q, want WARN", cfg.Logging.Level)
		}
		if cfg.Search.ChunkSize != 40 {
			t.Errorf("ChunkSize = %d, want 40", cfg.Search.ChunkSize)
		}
		if !cfg.Store.NoPersist {
			t.Error("expected NoPersist from environment")
		}
		// Keys without an override keep their defaults
		if cfg.Search.Suggestions != 5 {
			t.Errorf("Suggestions = %d, want default 5", cfg.Search.Suggestions)
		}
	})
}
