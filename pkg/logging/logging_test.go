package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestInit_RejectsBadSettings(t *testing.T) {
	require.Error(t, Init(Settings{Level: "loud"}))
	require.Error(t, Init(Settings{Format: "xml"}))
}

func TestInit_WritesToFile(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "concierge.log")
	require.NoError(t, Init(Settings{Level: "debug", File: path, Discard: true}))
	log.Debug().Str("component", "test").Msg("hello file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"message":"hello file"`)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestWriterFor_DiscardWithoutFile(t *testing.T) {
	w, err := writerFor(Settings{Discard: true}, os.Stderr)
	require.NoError(t, err)
	require.Equal(t, io.Discard, w)

	w, err = writerFor(Settings{Format: FormatJSON}, os.Stderr)
	require.NoError(t, err)
	require.Equal(t, os.Stderr, w)
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := NewWatermill(zerolog.New(&buf))
	a.With(watermill.LogFields{"topic": "t1"}).Error("publish failed", errors.New("boom"), watermill.LogFields{"n": 1})

	out := buf.String()
	require.Contains(t, out, `"component":"watermill"`)
	require.Contains(t, out, `"topic":"t1"`)
	require.Contains(t, out, `"error":"boom"`)
	require.Contains(t, out, `"message":"publish failed"`)
}
