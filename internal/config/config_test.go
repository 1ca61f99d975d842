package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultCapacity, cfg.History.Capacity)
	assert.Equal(t, "terminal", cfg.History.Bell)
	assert.Zero(t, cfg.History.WaitTimeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[history]
capacity = 25
wait_timeout = "1500ms"
bell = "none"

[log]
level = "debug"
file = "/tmp/rewind.log"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.History.Capacity)
	assert.Equal(t, 1500*time.Millisecond, cfg.History.WaitTimeout.Std())
	assert.Equal(t, "none", cfg.History.Bell)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/rewind.log", cfg.Log.File)
	assert.Equal(t, DefaultMaxBackups, cfg.Log.MaxBackups)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
history:
  capacity: 10
  wait_timeout: 2s
log:
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, 2*time.Second, cfg.History.WaitTimeout.Std())
	assert.Equal(t, DefaultBell, cfg.History.Bell)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yml", "  \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{"unsupported extension", "config.ini", "capacity=1", ErrUnsupportedFormat},
		{"zero capacity", "config.toml", "[history]\ncapacity = 0\n", ErrInvalidConfig},
		{"bad bell", "config.toml", "[history]\nbell = \"siren\"\n", ErrInvalidConfig},
		{"bad level", "config.yaml", "log:\n  level: loud\n", ErrInvalidConfig},
		{"negative timeout", "config.toml", "[history]\nwait_timeout = \"-1s\"\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoadParseErrors(t *testing.T) {
	for _, tc := range []struct{ file, content string }{
		{"config.toml", "[history\ncapacity = "},
		{"config.toml", "[history]\nunknown_key = 1\n"},
		{"config.yaml", "history:\n  capacity: [1, 2\n"},
		{"config.yaml", "history:\n  nope: 1\n"},
		{"config.toml", "[history]\nwait_timeout = \"soon\"\n"},
	} {
		_, err := Load(writeFile(t, tc.file, tc.content))
		var perr *ParseError
		require.ErrorAs(t, err, &perr, tc.content)
		assert.Contains(t, perr.Error(), tc.file)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.toml", "[history]\ncapacity = 25\n")

	t.Setenv(EnvHistoryCapacity, "7")
	t.Setenv(EnvHistoryWaitTimeout, "3s")
	t.Setenv(EnvHistoryBell, "none")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFile, "/var/log/rewind.log")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.Capacity)
	assert.Equal(t, 3*time.Second, cfg.History.WaitTimeout.Std())
	assert.Equal(t, "none", cfg.History.Bell)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/var/log/rewind.log", cfg.Log.File)
}

func TestEnvOverrideErrors(t *testing.T) {
	t.Setenv(EnvHistoryCapacity, "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv(EnvHistoryCapacity, "")
	t.Setenv(EnvHistoryWaitTimeout, "later")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.History.Capacity = 42
	cfg.History.WaitTimeout = Duration(750 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, cfg.WriteTOML(&buf))
	assert.Contains(t, buf.String(), "750ms")

	loaded, err := Load(writeFile(t, "roundtrip.toml", buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
