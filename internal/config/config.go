package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/rewind/internal/bell"
)

// Default configuration values.
const (
	DefaultCapacity   = 1000
	DefaultBell       = bell.ModeTerminal
	DefaultLogLevel   = "info"
	DefaultMaxSizeMB  = 20
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 7
)

// Config is the complete rewind configuration.
type Config struct {
	History HistoryConfig `toml:"history" yaml:"history"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// HistoryConfig configures the history engine.
type HistoryConfig struct {
	// Capacity is the maximum number of entries kept.
	Capacity int `toml:"capacity" yaml:"capacity"`

	// WaitTimeout bounds how long an operation waits for the effect ahead of
	// it. Zero waits forever.
	WaitTimeout Duration `toml:"wait_timeout" yaml:"wait_timeout"`

	// Bell is "terminal" or "none".
	Bell string `toml:"bell" yaml:"bell"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			Capacity: DefaultCapacity,
			Bell:     DefaultBell,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAgeDays: DefaultMaxAgeDays,
		},
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.History.Capacity <= 0 {
		return fmt.Errorf("%w: history.capacity must be positive, got %d", ErrInvalidConfig, c.History.Capacity)
	}
	if c.History.WaitTimeout < 0 {
		return fmt.Errorf("%w: history.wait_timeout must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.History.Bell) {
	case bell.ModeTerminal, bell.ModeNone:
	default:
		return fmt.Errorf("%w: history.bell %q (want %q or %q)", ErrInvalidConfig, c.History.Bell, bell.ModeTerminal, bell.ModeNone)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// WriteTOML encodes the configuration as TOML.
func (c Config) WriteTOML(w io.Writer) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(c)
}

// Duration is a time.Duration read from strings such as "250ms" or "2s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
