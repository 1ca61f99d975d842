package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REWIND_"

// Environment variable names.
const (
	EnvHistoryCapacity    = EnvPrefix + "HISTORY_CAPACITY"
	EnvHistoryWaitTimeout = EnvPrefix + "HISTORY_WAIT_TIMEOUT"
	EnvHistoryBell        = EnvPrefix + "HISTORY_BELL"
	EnvLogLevel           = EnvPrefix + "LOG_LEVEL"
	EnvLogFile            = EnvPrefix + "LOG_FILE"
)

// applyEnv overrides cfg with any variables set in the environment.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get(EnvHistoryCapacity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvHistoryCapacity, v)
		}
		cfg.History.Capacity = n
	}
	if v, ok := get(EnvHistoryWaitTimeout); ok {
		if err := cfg.History.WaitTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvHistoryWaitTimeout, v, err)
		}
	}
	if v, ok := get(EnvHistoryBell); ok {
		cfg.History.Bell = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := get(EnvLogFile); ok {
		cfg.Log.File = v
	}
	return nil
}
