// Package config loads vocabtrack settings from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	Countdown CountdownConfig `yaml:"countdown"`
	Export    ExportConfig    `yaml:"export"`
	Store     StoreConfig     `yaml:"store"`
	Control   ControlConfig   `yaml:"control"`
	Log       LogConfig       `yaml:"log"`
}

// AudioConfig is fixed for the life of a recording session.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	ChunkSize  int `yaml:"chunk_size"` // frames per read
}

// CountdownConfig times the beeps before capture. Durations are seconds.
type CountdownConfig struct {
	Steps    int     `yaml:"steps"`
	Beep     float64 `yaml:"beep"`
	Interval float64 `yaml:"interval"`
	Freq     float64 `yaml:"freq"`
	GoBeep   float64 `yaml:"go_beep"`
	GoFreq   float64 `yaml:"go_freq"`
}

// ExportConfig controls the assembled track.
type ExportConfig struct {
	ShortBreakBytes int    `yaml:"short_break_bytes"`
	Dir             string `yaml:"dir"`
}

// StoreConfig locates the project database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ControlConfig locates the control socket. An empty socket disables it.
type ControlConfig struct {
	Socket string `yaml:"socket"`
}

// LogConfig controls the log file. The terminal belongs to the UI, so logs
// never go to stdout.
type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		Audio: AudioConfig{SampleRate: 44100, Channels: 1, ChunkSize: 1024},
		Countdown: CountdownConfig{
			Steps:    3,
			Beep:     0.1,
			Interval: 0.15,
			Freq:     440,
			GoBeep:   0.5,
			GoFreq:   880,
		},
		Export:  ExportConfig{ShortBreakBytes: 44100 * 4, Dir: "."},
		Store:   StoreConfig{Path: filepath.Join(dir, "vocabtrack.sqlite")},
		Control: ControlConfig{Socket: filepath.Join(dir, "vocabtrack.sock")},
		Log:     LogConfig{Level: "info", Path: filepath.Join(dir, "vocabtrack.log")},
	}
}

// Dir returns the configuration directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vocabtrack")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "vocabtrack")
	}
	return filepath.Join(".", ".vocabtrack")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.Store.Path = expandTilde(cfg.Store.Path)
	cfg.Control.Socket = expandTilde(cfg.Control.Socket)
	cfg.Log.Path = expandTilde(cfg.Log.Path)
	cfg.Export.Dir = expandTilde(cfg.Export.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOCABTRACK_STORE"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("VOCABTRACK_SOCKET"); v != "" {
		cfg.Control.Socket = v
	}
	if v := os.Getenv("VOCABTRACK_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("VOCABTRACK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VOCABTRACK_CHANNELS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audio.Channels = n
		}
	}
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Countdown.Validate(); err != nil {
		return fmt.Errorf("countdown config: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config: %w", err)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store config: path cannot be empty")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// Validate validates audio configuration.
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000, got %d", a.SampleRate)
	}
	if a.Channels != 1 && a.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", a.Channels)
	}
	if a.ChunkSize < 64 {
		return fmt.Errorf("chunk_size must be at least 64 frames, got %d", a.ChunkSize)
	}
	return nil
}

// Validate validates countdown configuration.
func (c *CountdownConfig) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("steps cannot be negative, got %d", c.Steps)
	}
	if c.Beep < 0 || c.GoBeep < 0 {
		return fmt.Errorf("beep lengths cannot be negative")
	}
	if c.Interval < c.Beep {
		return fmt.Errorf("interval (%.2fs) must not be shorter than beep (%.2fs)", c.Interval, c.Beep)
	}
	if c.Steps > 0 && c.Freq <= 0 || c.GoBeep > 0 && c.GoFreq <= 0 {
		return fmt.Errorf("beep frequencies must be positive")
	}
	return nil
}

// Validate validates export configuration.
func (e *ExportConfig) Validate() error {
	if e.ShortBreakBytes < 0 {
		return fmt.Errorf("short_break_bytes cannot be negative, got %d", e.ShortBreakBytes)
	}
	return nil
}

// Validate validates log configuration.
func (l *LogConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("level must be one of debug, info, warn, error, got %q", l.Level)
}

// Seconds converts a config value in seconds to a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
