// Package config loads the curator configuration file and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const ConfigFile = "curator.yaml"

// Config carries run settings outside domain logic. Zero values mean
// "use the built-in default".
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	DatasetDir string `yaml:"dataset_dir"`
	OutputDir  string `yaml:"output_dir"`

	DocumentWorkers int `yaml:"document_workers"`
	CategoryWorkers int `yaml:"category_workers"`

	StreamAddr string `yaml:"stream_addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider:   "openai",
		DatasetDir: "dataset",
		OutputDir:  "output",
		StreamAddr: ":8787",
	}
}

// Load reads curator.yaml from the given directory, falling back to defaults
// when the file does not exist, then applies environment overrides.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, ConfigFile)) // #nosec G304 -- root is operator-provided
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the configuration back to curator.yaml.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(root, ConfigFile), data, 0600)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CURATOR_AI_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CURATOR_AI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CURATOR_DATASET_DIR"); v != "" {
		cfg.DatasetDir = v
	}
	if v := os.Getenv("CURATOR_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("CURATOR_DOCUMENT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DocumentWorkers = n
		}
	}
	if v := os.Getenv("CURATOR_CATEGORY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CategoryWorkers = n
		}
	}
}
