// Package commands implements the rewind command line.
package commands

import (
	"os"
	"path/filepath"

	"github.com/dshills/rewind/internal/config"
	"github.com/dshills/rewind/internal/logging"
)

// Flags holds global flag values and the state built from them in the root
// Before hook.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands.
	Config config.Config

	// Logger is built in the Before hook from the log flags and Config.
	Logger *logging.Logger

	// Deferred buffers console logs while a command owns the terminal.
	Deferred *logging.Deferred
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "rewind", "config.toml")
}
