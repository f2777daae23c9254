package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nullbind/internal/engine"
	"github.com/roach88/nullbind/internal/testutil"
)

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeWASD writes the WASD keymap (positions W A S D SPACE) into dir.
func writeWASD(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "wasd.cue", testutil.WASDKeymap)
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// recordSession runs events through the run command with a fixed session
// id and returns the database path.
func recordSession(t *testing.T, dir, keymap, session string, events ...string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "log.db")

	cmd := newRunCommand(&RunOptions{
		RootOptions:      &RootOptions{Format: "text"},
		SessionGenerator: engine.NewFixedGenerator(session),
	})
	cmd.SetIn(strings.NewReader(strings.Join(events, "\n")))

	_, err := execute(cmd, "--db", dbPath, keymap)
	require.NoError(t, err)
	return dbPath
}
