package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Grading.UpperCorrectness != 0.8 {
		t.Errorf("expected UpperCorrectness=0.8, got %f", cfg.Grading.UpperCorrectness)
	}
	if cfg.Grading.LowerCorrectness != 0.5 {
		t.Errorf("expected LowerCorrectness=0.5, got %f", cfg.Grading.LowerCorrectness)
	}
	if cfg.Grading.Language != "en" {
		t.Errorf("expected Language=en, got %s", cfg.Grading.Language)
	}
	if !cfg.Pipeline.TFIDF || !cfg.Pipeline.LSA {
		t.Error("expected tfidf and lsa enabled by default")
	}
	if cfg.Pipeline.Energy != 0.9 {
		t.Errorf("expected Energy=0.9, got %f", cfg.Pipeline.Energy)
	}
	if cfg.Pipeline.MaxVocabulary != 5000 {
		t.Errorf("expected MaxVocabulary=5000, got %d", cfg.Pipeline.MaxVocabulary)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Batch.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "essaysim.yaml")

	content := `
grading:
  upper_correctness: 0.9
  language: id
pipeline:
  lsa: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Grading.UpperCorrectness != 0.9 {
		t.Errorf("expected UpperCorrectness=0.9, got %f", cfg.Grading.UpperCorrectness)
	}
	if cfg.Grading.LowerCorrectness != 0.5 {
		t.Errorf("expected default LowerCorrectness=0.5, got %f", cfg.Grading.LowerCorrectness)
	}
	if cfg.Grading.Language != "id" {
		t.Errorf("expected Language=id, got %s", cfg.Grading.Language)
	}
	if cfg.Pipeline.LSA {
		t.Error("expected LSA=false")
	}
	if !cfg.Pipeline.TFIDF {
		t.Error("expected TFIDF to keep its default")
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "essaysim.toml")

	content := `
[grading]
lower_correctness = 0.3
stat_items = ["words", "fogindex"]

[batch]
workers = 8
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Grading.LowerCorrectness != 0.3 {
		t.Errorf("expected LowerCorrectness=0.3, got %f", cfg.Grading.LowerCorrectness)
	}
	if len(cfg.Grading.StatItems) != 2 || cfg.Grading.StatItems[1] != "fogindex" {
		t.Errorf("unexpected StatItems %v", cfg.Grading.StatItems)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Batch.Workers)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "essaysim.yaml")
	if err := os.WriteFile(configPath, []byte("grading: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDataDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, DataDir, "config.yaml")

	content := `
cache:
  size: 16
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Cache.Size != 16 {
		t.Errorf("expected Size=16, got %d", cfg.Cache.Size)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"essaysim.yaml", "essaysim.toml"} {
		path := filepath.Join(t.TempDir(), name)
		cfg := DefaultConfig()
		cfg.Grading.Language = "fr"
		cfg.Server.Addr = ":9090"

		if err := cfg.Save(path); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if loaded.Grading.Language != "fr" || loaded.Server.Addr != ":9090" {
			t.Errorf("%s: round trip lost values: %+v", name, loaded)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"lower above upper", func(c *Config) { c.Grading.LowerCorrectness = 0.9; c.Grading.UpperCorrectness = 0.8 }},
		{"upper above one", func(c *Config) { c.Grading.UpperCorrectness = 1.2 }},
		{"negative lower", func(c *Config) { c.Grading.LowerCorrectness = -0.1 }},
		{"empty language", func(c *Config) { c.Grading.Language = " " }},
		{"zero energy", func(c *Config) { c.Pipeline.Energy = 0 }},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"negative vocabulary cap", func(c *Config) { c.Pipeline.MaxVocabulary = -1 }},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestStoreDBPath(t *testing.T) {
	path := StoreDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".essaysim", "attempts.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
