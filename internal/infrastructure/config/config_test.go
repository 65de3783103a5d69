package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/storycurator/curator/internal/infrastructure/config"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.DatasetDir != "dataset" || cfg.OutputDir != "output" {
		t.Errorf("dirs = %q %q", cfg.DatasetDir, cfg.OutputDir)
	}
}

func TestLoad_FromFile(t *testing.T) {
	root := t.TempDir()
	content := "provider: ollama\nmodel: llama3\ndocument_workers: 2\n"
	if err := os.WriteFile(filepath.Join(root, config.ConfigFile), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "ollama" || cfg.Model != "llama3" {
		t.Errorf("provider/model = %q %q", cfg.Provider, cfg.Model)
	}
	if cfg.DocumentWorkers != 2 {
		t.Errorf("document workers = %d", cfg.DocumentWorkers)
	}
	if cfg.DatasetDir != "dataset" {
		t.Errorf("unset keys must keep defaults, got %q", cfg.DatasetDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CURATOR_AI_PROVIDER", "gemini")
	t.Setenv("CURATOR_DOCUMENT_WORKERS", "9")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q, want env override", cfg.Provider)
	}
	if cfg.DocumentWorkers != 9 {
		t.Errorf("document workers = %d, want env override", cfg.DocumentWorkers)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Model = "gpt-4o-mini"

	if err := config.Save(root, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := config.Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", loaded.Model)
	}
}
