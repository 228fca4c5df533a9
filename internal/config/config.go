// Package config loads user-overridable runtime defaults for the library:
// paste size caps, scrollback depth, and the shell used to spawn embedded
// VT emulator children.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds runtime defaults. Zero value is valid; Load fills in
// library defaults for anything left unset.
type Config struct {
	Terminal TerminalConfig `yaml:"terminal"`
}

type TerminalConfig struct {
	// MaxPasteBytes caps the size of an aggregated bracketed-paste event.
	// 0 means use DefaultMaxPasteBytes.
	MaxPasteBytes int `yaml:"max_paste_bytes"`
	// ScrollbackLines is the number of history rows kept by the primary
	// VT screen above the visible region. 0 means use DefaultScrollbackLines.
	ScrollbackLines int `yaml:"scrollback_lines"`
	// Shell overrides $SHELL as the default argv[0] for spawn() when the
	// caller does not supply one. Empty means fall back to $SHELL, then "/bin/sh".
	Shell string `yaml:"shell"`
	// QueueCapacity is the bounded event queue size. 0 means use DefaultQueueCapacity.
	QueueCapacity int `yaml:"queue_capacity"`
}

const (
	DefaultMaxPasteBytes   = 1 << 20 // 1 MiB
	DefaultScrollbackLines = 10000
	DefaultQueueCapacity   = 512
)

// ConfigDir returns the library's configuration directory (~/.config/vx/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".vx")
	}
	return filepath.Join(home, ".config", "vx")
}

// Load reads config.yaml from ConfigDir. A missing file is not an error;
// it yields a Config with library defaults applied.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads and validates the config at path, applying defaults to
// any zero-valued field.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Terminal.MaxPasteBytes <= 0 {
		c.Terminal.MaxPasteBytes = DefaultMaxPasteBytes
	}
	if c.Terminal.ScrollbackLines <= 0 {
		c.Terminal.ScrollbackLines = DefaultScrollbackLines
	}
	if c.Terminal.QueueCapacity <= 0 {
		c.Terminal.QueueCapacity = DefaultQueueCapacity
	}
	if c.Terminal.Shell == "" {
		if sh := os.Getenv("SHELL"); sh != "" {
			c.Terminal.Shell = sh
		} else {
			c.Terminal.Shell = "/bin/sh"
		}
	}
}

func (c *Config) validate() error {
	if c.Terminal.MaxPasteBytes < 0 {
		return fmt.Errorf("terminal.max_paste_bytes: must not be negative")
	}
	if c.Terminal.ScrollbackLines < 0 {
		return fmt.Errorf("terminal.scrollback_lines: must not be negative")
	}
	if c.Terminal.QueueCapacity < 0 {
		return fmt.Errorf("terminal.queue_capacity: must not be negative")
	}
	return nil
}
