// Package config loads the layout server configuration.
//
// Values come, in increasing precedence, from built-in defaults, an optional
// config.yaml (searched in the working directory and $HOME/.layout-mcp) and
// LAYOUT_MCP_ environment variables. A .env file in the working directory is
// loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/pagexml"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "LAYOUT_MCP"

// Config is the server configuration.
type Config struct {
	// ResourcePath is the directory holding one sub-directory per book.
	ResourcePath string `mapstructure:"resource_path"`

	// BookID selects the book opened by commands that do not name one.
	BookID int `mapstructure:"book_id"`

	LogLevel string `mapstructure:"log_level"`

	// PageXMLVersion is the PAGE schema version of exported documents.
	PageXMLVersion string `mapstructure:"page_xml_version"`

	// AllowLocalResults lets segmentation reuse documents cached next to
	// the page images.
	AllowLocalResults bool `mapstructure:"allow_local_results"`

	// DesiredImageHeight overrides the engine working height when positive.
	DesiredImageHeight int `mapstructure:"desired_image_height"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		ResourcePath:       "books",
		LogLevel:           "info",
		PageXMLVersion:     pagexml.DefaultVersion,
		AllowLocalResults:  true,
		DesiredImageHeight: layout.DefaultDesiredImageHeight,
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.ResourcePath == "" {
		return errors.New("resource_path must not be empty")
	}
	if !pagexml.SupportedVersion(c.PageXMLVersion) {
		return fmt.Errorf("page_xml_version %q is not one of %s",
			c.PageXMLVersion, strings.Join(pagexml.Versions(), ", "))
	}
	if c.DesiredImageHeight < 0 {
		return fmt.Errorf("desired_image_height must not be negative, got %d", c.DesiredImageHeight)
	}
	return nil
}

// Level returns the slog level named by LogLevel. Unknown names yield info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a manager and loads the initial configuration. An
// empty cfgFile searches the default locations; a missing file is not an
// error there.
func NewManager(cfgFile string) (*Manager, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	m := &Manager{v: viper.New()}
	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	m.v.SetDefault("resource_path", defaults.ResourcePath)
	m.v.SetDefault("book_id", defaults.BookID)
	m.v.SetDefault("log_level", defaults.LogLevel)
	m.v.SetDefault("page_xml_version", defaults.PageXMLVersion)
	m.v.SetDefault("allow_local_results", defaults.AllowLocalResults)
	m.v.SetDefault("desired_image_height", defaults.DesiredImageHeight)

	m.v.SetEnvPrefix(EnvPrefix)
	m.v.AutomaticEnv()

	if cfgFile != "" {
		m.v.SetConfigFile(cfgFile)
	} else {
		m.v.SetConfigName("config")
		m.v.SetConfigType("yaml")
		m.v.AddConfigPath(".")
		m.v.AddConfigPath("$HOME/.layout-mcp")
	}

	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Set overrides one key for the rest of the process, as a command-line
// flag does, and reloads.
func (m *Manager) Set(key string, value any) error {
	m.v.Set(key, value)
	cfg, err := m.load()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// ConfigFile returns the file the configuration was read from, or "".
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// WatchConfig reloads the configuration whenever the config file changes.
// An invalid edit is logged and the previous configuration stays active.
func (m *Manager) WatchConfig() {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := m.load()
		if err != nil {
			slog.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}

		m.mu.Lock()
		m.config = cfg
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	m.v.WatchConfig()
}
