package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./scatter.yaml",
		UserConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "SurfScatter")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "SurfScatter")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "surfscatter")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "surfscatter")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate rejects settings the scatter tool cannot work with.
func (c *Config) Validate() error {
	d := c.Defaults
	switch {
	case d.NumInstances < 1 || d.NumInstances > 1000:
		return fmt.Errorf("defaults.num_instances %d outside 1..1000", d.NumInstances)
	case d.ScaleMin <= 0 || d.ScaleMax <= 0:
		return fmt.Errorf("defaults scale range %g..%g must be positive", d.ScaleMin, d.ScaleMax)
	case c.Watch.Debounce < 0:
		return fmt.Errorf("watch.debounce %v is negative", c.Watch.Debounce)
	}
	return nil
}
