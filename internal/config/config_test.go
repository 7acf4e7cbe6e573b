package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ExportCooldown() != 300*time.Millisecond {
		t.Errorf("expected default cooldown 300ms, got %s", cfg.ExportCooldown())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FICHE_PORT", "9090")
	t.Setenv("FICHE_EXPORT_COOLDOWN_MS", "500")
	t.Setenv("FICHE_IMAGES_ENABLED", "true")
	t.Setenv("FICHE_ALLOWED_ORIGINS", "http://a.test/, http://b.test")
	t.Setenv("FICHE_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "bare-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port: got %q, want 9090", cfg.Port)
	}
	if cfg.ExportCooldownMS != 500 {
		t.Errorf("cooldown: got %d, want 500", cfg.ExportCooldownMS)
	}
	if !cfg.ImagesEnabled {
		t.Error("images_enabled should be true")
	}
	if cfg.GeminiAPIKey != "bare-key" {
		t.Errorf("api key: got %q, want fallback to GEMINI_API_KEY", cfg.GeminiAPIKey)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://a.test" || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("allowed origins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FICHE_STORE_CAPACITY=12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("FICHE_STORE_CAPACITY") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StoreCapacity != 12 {
		t.Errorf("store capacity: got %d, want 12", cfg.StoreCapacity)
	}
}

func TestLoadMissingDotEnvIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero store capacity")
	}

	cfg = DefaultConfig()
	cfg.ExportCooldownMS = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative cooldown")
	}
}

func TestLoadYAMLFileUnderEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fiche.yaml")
	content := "port: \"7070\"\nstore_capacity: 32\nallowed_origins:\n  - https://fiche.example/\n  - http://localhost:5173\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("FICHE_STORE_CAPACITY", "64")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("port: got %q, want 7070 from file", cfg.Port)
	}
	if cfg.StoreCapacity != 64 {
		t.Errorf("store capacity: got %d, env should win over file", cfg.StoreCapacity)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://fiche.example" {
		t.Errorf("allowed origins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadBrokenYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiche.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnv, path)

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
