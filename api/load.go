package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadConfig reads a run config from a .json or .toml file and fills defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Classpath != "" && !filepath.IsAbs(cfg.Classpath) {
		cfg.Classpath = filepath.Join(filepath.Dir(path), cfg.Classpath)
	}
	return &cfg, nil
}

// Normalize fills defaults and checks the recipe list.
func (c *Config) Normalize() error {
	if c.MaxPasses == 0 {
		c.MaxPasses = DefaultMaxPasses
	}
	if c.MaxPasses < 0 {
		return fmt.Errorf("max_passes must be positive, got %d", c.MaxPasses)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	for i := range c.Recipes {
		r := &c.Recipes[i]
		if r.Type == "" {
			return fmt.Errorf("recipe %d: missing type", i)
		}
		if r.Name == "" {
			r.Name = r.Type
		}
	}
	return nil
}

// LoadClasspath reads a JSON classpath description.
func LoadClasspath(path string) (*Classpath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classpath: %w", err)
	}
	return ParseClasspath(data)
}

// ParseClasspath decodes a JSON classpath description.
func ParseClasspath(data []byte) (*Classpath, error) {
	var cp Classpath
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse classpath: %w", err)
	}
	for i, t := range cp.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("classpath type %d: missing name", i)
		}
	}
	return &cp, nil
}
