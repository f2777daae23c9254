package testutil

import (
	"testing"

	"github.com/roach88/nullbind/internal/config"
)

// WASDKeymap binds each WASD key to a key press followed by its axis
// resolver. Positions are W, A, S, D, SPACE.
const WASDKeymap = `
behaviors: {
	kp: {kind: "key_press"}
	ad: {kind: "socd", pair: ["A", "D"]}
	ws: {kind: "socd", pair: ["W", "S"]}
}
keymap: [
	["kp W", "ws W"],
	["kp A", "ad A"],
	["kp S", "ws S"],
	["kp D", "ad D"],
	["kp SPACE"],
]
`

// MustKeymap parses src as a keymap named name, failing tb on error.
func MustKeymap(tb testing.TB, name, src string) *config.Keymap {
	tb.Helper()
	km, err := config.ParseKeymap(name, []byte(src))
	if err != nil {
		tb.Fatalf("parse keymap %s: %v", name, err)
	}
	return km
}
