// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.ghostpane.dev/ghostpane/internal/types"
)

const (
	appName        = "ghostpane"
	configFileName = "config.json"

	defaultBackendURL = "https://app.ghostpane.dev"
	defaultOpacity    = 0.85
)

// Logging controls the slog handler installed at startup.
type Logging struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
	Path   string `json:"path"`
	Stdout bool   `json:"stdout"`
}

// Config represents the application configuration.
type Config struct {
	BackendURL  string                    `json:"backend_url"`
	APIToken    string                    `json:"api_token,omitempty"`
	Opacity     float64                   `json:"opacity"`
	AlwaysOnTop bool                      `json:"always_on_top"`
	Language    types.ProgrammingLanguage `json:"language"`
	Logging     Logging                   `json:"logging"`
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Default returns a Config populated with defaults.
func Default() *Config {
	cfg := &Config{
		BackendURL:  defaultBackendURL,
		Opacity:     defaultOpacity,
		AlwaysOnTop: true,
		Language:    types.LangJavaScript,
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Stdout: true,
		},
	}
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.Logging.Path = filepath.Join(dir, appName, appName+".log")
	}
	return cfg
}

// normalize clamps out-of-range values back to usable defaults.
func (c *Config) normalize() {
	if c.Opacity <= 0 || c.Opacity > 1 {
		c.Opacity = defaultOpacity
	}
	if c.BackendURL == "" {
		c.BackendURL = defaultBackendURL
	}
	if !c.Language.Valid() {
		c.Language = types.LangJavaScript
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// dirOverride redirects the config directory when non-empty. Tests
// point it at a scratch directory so they never touch the user's file.
var dirOverride string

// SetDir overrides where the config file lives. Empty restores the
// platform default.
func SetDir(dir string) { dirOverride = dir }

func configPath() (string, error) {
	if dirOverride != "" {
		return filepath.Join(dirOverride, configFileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}
