package cmds

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", "", "--log-file", filepath.Join(t.TempDir(), "test.log")))
	err := root.Execute()
	return out.String(), err
}

func TestSessionShowAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	first, err := run(t, "", "session", "show", "--store-path", path)
	require.NoError(t, err)
	first = strings.TrimSpace(first)
	require.NotEmpty(t, first)

	again, err := run(t, "", "session", "show", "--store-path", path)
	require.NoError(t, err)
	require.Equal(t, first, strings.TrimSpace(again))

	reset, err := run(t, "", "session", "reset", "--store-path", path)
	require.NoError(t, err)
	require.NotEqual(t, first, strings.TrimSpace(reset))

	after, err := run(t, "", "session", "show", "--store-path", path)
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(reset), strings.TrimSpace(after))
}

func TestSessionShow_SQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	out, err := run(t, "", "session", "show", "--store", "sqlite", "--store-path", path)
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(out))
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestRender_YAML(t *testing.T) {
	out, err := run(t, "Hello\n- one\n- two\n\n[SUGGESTIONS]\n- Next?", "render")
	require.NoError(t, err)
	require.Contains(t, out, "message: |-")
	require.Contains(t, out, "kind: list")
	require.Contains(t, out, "list_kind: bulleted")
	require.Contains(t, out, "- Next?")
}

func TestRender_Text(t *testing.T) {
	out, err := run(t, "Intro\n1. first\n\n[SUGGESTIONS]\n- Ask more", "render", "--format", "text")
	require.NoError(t, err)
	require.Contains(t, out, "1. first")
	require.Contains(t, out, "[1] Ask more")
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := run(t, "x", "render", "--format", "xml")
	require.Error(t, err)
}

func TestConfigValidationFailsEarly(t *testing.T) {
	_, err := run(t, "", "session", "show", "--store", "memory", "--input-limit", "-1")
	require.Error(t, err)

	_, err = run(t, "", "session", "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
