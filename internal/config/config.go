package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cellmapper/internal/logging"
	"cellmapper/internal/mapping"

	"gopkg.in/yaml.v3"
)

// Config holds all cellmap configuration.
type Config struct {
	// Pack prefills the Ns/Np/Rows/Columns fields. Zero values mean "ask".
	Pack mapping.PackConfig `yaml:"pack"`

	// ParallelGroup is the initial text of the Parallel Group field. Like the
	// field itself it is only parsed when a cell is clicked.
	ParallelGroup string `yaml:"parallel_group"`

	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// WatchConfig configures `cellmap watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ParallelGroup: "1",
		UI:            *DefaultUIConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
	}
}

// Dir returns the .cellmap directory for a workspace.
func Dir(workspace string) string {
	return filepath.Join(workspace, ".cellmap")
}

// DefaultPath returns the config file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(Dir(workspace), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logging.ConfigLog("saved %s", path)
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if theme := os.Getenv("CELLMAP_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if lvl := os.Getenv("CELLMAP_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if dbg := os.Getenv("CELLMAP_DEBUG"); dbg != "" {
		c.Logging.DebugMode = dbg == "1" || strings.EqualFold(dbg, "true")
	}
	if p := os.Getenv("CELLMAP_PARALLEL_GROUP"); p != "" {
		c.ParallelGroup = p
	}
}

// ValidThemes lists the supported UI themes.
var ValidThemes = []string{"light", "dark", "auto"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	p := c.Pack
	if p != (mapping.PackConfig{}) {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pack: %w", err)
		}
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	if c.UI.CellWidth < 3 {
		return fmt.Errorf("ui.cell_width must be at least 3, got %d", c.UI.CellWidth)
	}

	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}

	return nil
}

// HasPack reports whether the pack prefill is complete.
func (c *Config) HasPack() bool {
	return c.Pack.Validate() == nil
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}
