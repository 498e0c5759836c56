// Package config stores the harness preferences in a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leandrodaf/midiharness/sdk/contracts"
)

// NoteDefaults are the parameters used when a note command omits them.
type NoteDefaults struct {
	Pitch      uint8 `json:"pitch"`
	Velocity   uint8 `json:"velocity"`
	Channel    uint8 `json:"channel"`
	DurationMS int   `json:"durationMs"`
}

// ChordDefaults are the parameters used when a chord command omits them.
type ChordDefaults struct {
	Root       uint8   `json:"root"`
	Type       string  `json:"type"`
	Velocity   float64 `json:"velocity"`
	Channel    uint8   `json:"channel"`
	DurationMS int     `json:"durationMs"`
}

// Config is the main configuration structure
type Config struct {
	PortName      string        `json:"portName,omitempty"`
	PortMatchers  []string      `json:"portMatchers,omitempty"`
	Backend       string        `json:"backend,omitempty"`
	LogLevel      string        `json:"logLevel,omitempty"`
	LogFile       string        `json:"logFile,omitempty"`
	AccessTimeout string        `json:"accessTimeout,omitempty"`
	AllowOverlap  bool          `json:"allowOverlap,omitempty"`
	Note          NoteDefaults  `json:"note"`
	Chord         ChordDefaults `json:"chord"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		PortMatchers: append([]string(nil), contracts.DefaultPortMatchers...),
		Backend:      string(contracts.BackendAuto),
		LogLevel:     contracts.InfoLevel.String(),
		Note: NoteDefaults{
			Pitch:      60,
			Velocity:   100,
			DurationMS: 500,
		},
		Chord: ChordDefaults{
			Root:       60,
			Type:       "major",
			Velocity:   0.7,
			DurationMS: 1000,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midiharness"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep
// their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options turns the file settings into client options.
func (c *Config) Options() ([]contracts.Option, error) {
	var opts []contracts.Option

	if c.LogLevel != "" {
		level, err := contracts.ParseLogLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, contracts.WithLogLevel(level))
	}
	if c.LogFile != "" {
		opts = append(opts, contracts.WithLogFile(c.LogFile))
	}
	if c.Backend != "" {
		opts = append(opts, contracts.WithBackend(contracts.Backend(c.Backend)))
	}
	if len(c.PortMatchers) > 0 {
		opts = append(opts, contracts.WithPortMatchers(c.PortMatchers...))
	}
	if c.AccessTimeout != "" {
		d, err := time.ParseDuration(c.AccessTimeout)
		if err != nil {
			return nil, fmt.Errorf("accessTimeout: %w", err)
		}
		opts = append(opts, contracts.WithAccessTimeout(d))
	}
	return opts, nil
}

// NoteDuration is the default note length.
func (c *Config) NoteDuration() time.Duration {
	return time.Duration(c.Note.DurationMS) * time.Millisecond
}

// ChordDuration is the default chord length.
func (c *Config) ChordDuration() time.Duration {
	return time.Duration(c.Chord.DurationMS) * time.Millisecond
}
