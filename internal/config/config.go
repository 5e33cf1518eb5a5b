package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultTitle             = "GitGotchi"
	DefaultWindowSize        = 200
	DefaultCompanionURL      = "ws://localhost:42069"
	DefaultReconnectInterval = 5 * time.Second
	DefaultFPS               = 60
	DefaultCharacterSize     = 200
	DefaultLogMaxAge         = 3 * 24 * time.Hour
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "GITGOTCHI_CONFIG"

// Config holds the desktop shell configuration
type Config struct {
	Window    WindowConfig    `mapstructure:"window" yaml:"window"`
	Companion CompanionConfig `mapstructure:"companion" yaml:"companion"`
	Roaming   RoamingConfig   `mapstructure:"roaming" yaml:"roaming"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// WindowConfig describes the character window
type WindowConfig struct {
	Title  string `mapstructure:"title" yaml:"title"`
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
}

// CompanionConfig configures the link to the editor extension
type CompanionConfig struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled"`
	URL               string        `mapstructure:"url" yaml:"url"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval" yaml:"reconnect_interval"`
}

// RoamingConfig configures the character physics loop
type RoamingConfig struct {
	FPS           int `mapstructure:"fps" yaml:"fps"`
	CharacterSize int `mapstructure:"character_size" yaml:"character_size"`
}

// LogConfig configures file logging
type LogConfig struct {
	Dir     string        `mapstructure:"dir" yaml:"dir"`
	MaxAge  time.Duration `mapstructure:"max_age" yaml:"max_age"`
	JSON    bool          `mapstructure:"json" yaml:"json"`
	Console bool          `mapstructure:"console" yaml:"console"`
}

// Dir returns the per-user data directory (~/.gitgotchi)
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".gitgotchi")
}

// Path returns the config file location, honouring GITGOTCHI_CONFIG
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  DefaultTitle,
			Width:  DefaultWindowSize,
			Height: DefaultWindowSize,
		},
		Companion: CompanionConfig{
			Enabled:           true,
			URL:               DefaultCompanionURL,
			ReconnectInterval: DefaultReconnectInterval,
		},
		Roaming: RoamingConfig{
			FPS:           DefaultFPS,
			CharacterSize: DefaultCharacterSize,
		},
		Log: LogConfig{
			Dir:    filepath.Join(Dir(), "logs"),
			MaxAge: DefaultLogMaxAge,
			JSON:   true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("companion.enabled", d.Companion.Enabled)
	v.SetDefault("companion.url", d.Companion.URL)
	v.SetDefault("companion.reconnect_interval", d.Companion.ReconnectInterval)
	v.SetDefault("roaming.fps", d.Roaming.FPS)
	v.SetDefault("roaming.character_size", d.Roaming.CharacterSize)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.console", d.Log.Console)
}

// Load reads the config file (if any) and GITGOTCHI_* env overrides on top of
// the defaults. A missing file is not an error.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit file path
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	v.SetEnvPrefix("GITGOTCHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg as YAML to path, creating the directory if needed
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ValidationError holds the warnings produced while defaults were applied
type ValidationError struct {
	Warnings []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Warnings, "; ")
}

// Validate replaces invalid values with defaults and reports what changed
func (c *Config) Validate() *ValidationError {
	var warnings []string
	d := Default()

	if strings.TrimSpace(c.Window.Title) == "" {
		warnings = append(warnings, fmt.Sprintf("empty window title, using default '%s'", d.Window.Title))
		c.Window.Title = d.Window.Title
	}

	if c.Window.Width < 50 || c.Window.Width > 4096 {
		warnings = append(warnings, fmt.Sprintf("invalid window width %d (must be 50-4096), using default %d", c.Window.Width, d.Window.Width))
		c.Window.Width = d.Window.Width
	}

	if c.Window.Height < 50 || c.Window.Height > 4096 {
		warnings = append(warnings, fmt.Sprintf("invalid window height %d (must be 50-4096), using default %d", c.Window.Height, d.Window.Height))
		c.Window.Height = d.Window.Height
	}

	if !strings.HasPrefix(c.Companion.URL, "ws://") && !strings.HasPrefix(c.Companion.URL, "wss://") {
		warnings = append(warnings, fmt.Sprintf("invalid companion url '%s', using default '%s'", c.Companion.URL, d.Companion.URL))
		c.Companion.URL = d.Companion.URL
	}

	if c.Companion.ReconnectInterval < 100*time.Millisecond {
		warnings = append(warnings, fmt.Sprintf("reconnect interval %s too short, using default %s", c.Companion.ReconnectInterval, d.Companion.ReconnectInterval))
		c.Companion.ReconnectInterval = d.Companion.ReconnectInterval
	}

	if c.Roaming.FPS < 1 || c.Roaming.FPS > 240 {
		warnings = append(warnings, fmt.Sprintf("invalid roaming fps %d (must be 1-240), using default %d", c.Roaming.FPS, d.Roaming.FPS))
		c.Roaming.FPS = d.Roaming.FPS
	}

	if c.Roaming.CharacterSize < 1 {
		warnings = append(warnings, fmt.Sprintf("invalid character size %d, using default %d", c.Roaming.CharacterSize, d.Roaming.CharacterSize))
		c.Roaming.CharacterSize = d.Roaming.CharacterSize
	}

	if c.Log.Dir == "" {
		c.Log.Dir = d.Log.Dir
	}
	if c.Log.MaxAge <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid log max age %s, using default %s", c.Log.MaxAge, d.Log.MaxAge))
		c.Log.MaxAge = d.Log.MaxAge
	}

	if len(warnings) > 0 {
		return &ValidationError{Warnings: warnings}
	}
	return nil
}
