package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the viewer configuration.
type Config struct {
	Cache struct {
		Range        int `yaml:"range" validate:"min=0,max=32"`   // Entries prefetched on each side of the cursor
		Workers      int `yaml:"workers" validate:"min=1,max=64"` // Decode worker goroutines
		MaxDimension int `yaml:"max_dimension" validate:"min=0"`  // Downscale decoded images above this size (0 = never)
	} `yaml:"cache"`
	Navigation struct {
		Ignore   []string `yaml:"ignore" validate:"dive,required,glob"` // Entry names hidden from listings
		MaxDepth int      `yaml:"max_depth" validate:"min=1,max=4096"`  // Recursion cap for directory searches
		Watch    bool     `yaml:"watch"`                                // Refresh when the current directory changes
	} `yaml:"navigation"`
	Display struct {
		Info     string `yaml:"info" validate:"oneof=none short long"` // Initial info overlay
		Theme    string `yaml:"theme" validate:"theme"`                // Terminal color theme
		FontSize int    `yaml:"font_size" validate:"min=6,max=96"`     // Text displayable font size
	} `yaml:"display"`
	History struct {
		Enabled bool   `yaml:"enabled"` // Remember the last viewed entry per directory
		Path    string `yaml:"path"`    // Store directory (empty = user cache dir)
	} `yaml:"history"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
		Format string `yaml:"format" validate:"oneof=text json"`
		File   string `yaml:"file"`
	} `yaml:"log"`
}

// DefaultPath returns ~/.config/imgview/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "imgview", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Fields absent from the file keep their default values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Cache.Range = 3
	cfg.Cache.Workers = 4
	cfg.Cache.MaxDimension = 0

	cfg.Navigation.Ignore = []string{}
	cfg.Navigation.MaxDepth = 64
	cfg.Navigation.Watch = true

	cfg.Display.Info = "short"
	cfg.Display.Theme = "dark"
	cfg.Display.FontSize = 16

	cfg.History.Enabled = false

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"

	return cfg
}

// New returns the default configuration.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// HistoryPath returns the configured history store directory, falling back
// to imgview/history under the user cache directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "imgview", "history"), nil
}

// GetTheme returns a predefined theme by name.
// If the theme doesn't exist, returns the dark theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"dark": {
			"primary":  "105", // Dark Blue
			"success":  "78",  // Dark Green
			"warning":  "214", // Dark Yellow
			"error":    "160", // Dark Red
			"info":     "33",  // Dark Blue
			"emphasis": "147", // Light Blue
			"border":   "105", // Dark Blue
		},
		"light": {
			"primary":  "135", // Light Purple
			"success":  "150", // Light Green
			"warning":  "222", // Light Yellow
			"error":    "210", // Light Red
			"info":     "117", // Light Blue
			"emphasis": "219", // Very Light Pink
			"border":   "135", // Light Purple
		},
		"monochrome": {
			"primary":  "245", // Light Grey
			"success":  "252", // White
			"warning":  "241", // Medium Grey
			"error":    "232", // Black
			"info":     "248", // Grey
			"emphasis": "255", // Bright White
			"border":   "245", // Light Grey
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["dark"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"dark", "light", "monochrome"}
}
