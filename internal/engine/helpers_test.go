package engine

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nullbind/internal/config"
	"github.com/roach88/nullbind/internal/hid"
	"github.com/roach88/nullbind/internal/store"
)

// wasdKeymap binds every WASD key to a key press followed by its axis resolver.
const wasdKeymap = `
behaviors: {
	kp:   {kind: "key_press"}
	ad:   {kind: "socd", pair: ["A", "D"]}
	ws:   {kind: "socd", pair: ["W", "S"]}
	none: {kind: "none"}
}
keymap: [
	["kp W", "ws W"],
	["kp A", "ad A"],
	["kp S", "ws S"],
	["kp D", "ad D"],
	["kp SPACE"],
	["none", "kp ESC"],
]
`

// Positions in wasdKeymap.
const (
	posW = iota
	posA
	posS
	posD
	posSpace
	posNone
)

// bareKeymap binds the pair to the resolver alone, with no key press before it.
const bareKeymap = `
behaviors: ad: {kind: "socd", pair: ["A", "D"]}
keymap: [["ad A"], ["ad D"]]
`

// fullKeymap adds five plain keys so the report can be filled around A/D.
const fullKeymap = `
behaviors: {
	kp: {kind: "key_press"}
	ad: {kind: "socd", pair: ["A", "D"]}
}
keymap: [
	["kp A", "ad A"],
	["kp D", "ad D"],
	["kp B"],
	["kp C"],
	["kp E"],
	["kp F"],
	["kp G"],
]
`

func loadTestKeymap(t *testing.T, src string) *config.Keymap {
	t.Helper()
	km, err := config.ParseKeymap("test.cue", []byte(src))
	require.NoError(t, err)
	return km
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, src string, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{
		WithLogger(quietLogger()),
		WithSessionGenerator(NewFixedGenerator("test-session")),
	}, opts...)
	eng, err := New(loadTestKeymap(t, src), hid.NewKeyboard(), opts...)
	require.NoError(t, err)
	return eng
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// action is an instruction that changed the report.
func action(kind hid.ActionKind, u hid.Usage, origin string) hid.Action {
	return hid.Action{Kind: kind, Usage: u, Origin: origin, Applied: true}
}

// noop is an instruction issued while the report was already in that state.
func noop(kind hid.ActionKind, u hid.Usage, origin string) hid.Action {
	return hid.Action{Kind: kind, Usage: u, Origin: origin}
}
