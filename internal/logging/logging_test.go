package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := Setup(Options{Level: "WARN", Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l.Info().Msg("hidden")
	l.Warn().Str("op", "undo").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "op=undo")
}

func TestSetupDefaultsToInfo(t *testing.T) {
	l, err := Setup(Options{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	assert.NoError(t, l.Close())
}

func TestSetupInvalidLevel(t *testing.T) {
	_, err := Setup(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rewind.log")
	var console bytes.Buffer

	l, err := Setup(Options{Level: "debug", File: path, Console: &console, NoColor: true})
	require.NoError(t, err)

	hl := Component(l.Logger, "history")
	hl.Debug().Int("cursor", 3).Msg("pushed")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"history"`)
	assert.Contains(t, string(data), `"cursor":3`)
	assert.Contains(t, console.String(), "pushed")
}

func TestDeferredFlush(t *testing.T) {
	d := &Deferred{}
	l, err := Setup(Options{Console: d, NoColor: true})
	require.NoError(t, err)

	l.Info().Msg("while the screen is up")
	assert.Positive(t, d.Len())

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Contains(t, out.String(), "while the screen is up")
	assert.Zero(t, d.Len())
}
