package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	// configEnv names a config file when no --config flag is given.
	configEnv = "MARCHING_TERRAIN_CONFIG"
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile looks for config in $MARCHING_TERRAIN_CONFIG, the working
// directory and the user config directory, in that order.
func findConfigFile() string {
	var candidates []string
	if env := os.Getenv(configEnv); env != "" {
		candidates = append(candidates, env)
	}
	candidates = append(candidates,
		configFileName,
		filepath.Join(ConfigDir(), configFileName),
	)

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
		return filepath.Join(home, "Library", "Application Support", "MarchingTerrain")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MarchingTerrain")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "marching-terrain")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marching-terrain")
	}
}

// Validate checks that the config describes a buildable terrain.
func (c *Config) Validate() error {
	settings := c.Terrain.Settings()
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	if c.World.ChunksX < 1 || c.World.ChunksZ < 1 {
		return fmt.Errorf("world: need at least one chunk, got %dx%d", c.World.ChunksX, c.World.ChunksZ)
	}
	return nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
