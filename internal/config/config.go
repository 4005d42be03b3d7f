package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// NoDefault as ordering.default removes the fallback strategy.
const NoDefault = "none"

type Config struct {
	Project struct {
		Root      string   `yaml:"root"`
		DB        string   `yaml:"db"`
		Languages []string `yaml:"languages"`
	} `yaml:"project"`
	Ordering struct {
		Default string            `yaml:"default"` // strategy name, or "none"
		Types   map[string]string `yaml:"types"`   // type name -> strategy name
	} `yaml:"ordering"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Project.DB = "methodorder.db"
	cfg.Project.Languages = []string{"go", "java"}
	cfg.Ordering.Default = "unspecified"
	cfg.Ordering.Types = map[string]string{}
	return &cfg
}

// LoadConfig reads a YAML file over the defaults. A missing file is not an
// error. Environment variables (optionally from .env) override both.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("METHODORDER_DEFAULT_STRATEGY"); v != "" {
		cfg.Ordering.Default = v
	}
	if v := os.Getenv("METHODORDER_DB"); v != "" {
		cfg.Project.DB = v
	}
	if v := os.Getenv("METHODORDER_ROOT"); v != "" {
		cfg.Project.Root = v
	}

	if cfg.Ordering.Types == nil {
		cfg.Ordering.Types = map[string]string{}
	}
	return cfg, nil
}

// HasDefault reports whether a fallback strategy is configured.
func (c *Config) HasDefault() bool {
	d := strings.TrimSpace(c.Ordering.Default)
	return d != "" && !strings.EqualFold(d, NoDefault)
}
