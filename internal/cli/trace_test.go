package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nullbind/internal/hid"
	"github.com/roach88/nullbind/internal/store"
)

func TestTrace_ListSessions(t *testing.T) {
	dir := t.TempDir()
	keymap := writeWASD(t, dir)
	dbPath := recordSession(t, dir, keymap, "sess-a", "press 1", "press 3")
	recordSession(t, dir, keymap, "sess-b", "press 0")

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "sess-a")
	assert.Contains(t, out, "sess-b")
	assert.Contains(t, out, "2 event(s)")
}

func TestTrace_ListSessionsJSON(t *testing.T) {
	dir := t.TempDir()
	keymap := writeWASD(t, dir)
	dbPath := recordSession(t, dir, keymap, "sess-a", "press 1", "press 3")

	out, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   []SessionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "sess-a", resp.Data[0].ID)
	assert.Equal(t, 2, resp.Data[0].Events)
	assert.Len(t, resp.Data[0].KeymapHash, 64)
}

func TestTrace_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in database.")
}

func TestTrace_Session(t *testing.T) {
	dir := t.TempDir()
	keymap := writeWASD(t, dir)
	dbPath := recordSession(t, dir, keymap, "sess-a", "press 1", "press 3", "release 1", "press 4")

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--session", "sess-a")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: sess-a")
	assert.Contains(t, out, "[2] press 3 -> ad")
	assert.Contains(t, out, "release A (ad)")
	assert.Contains(t, out, "release A (kp, no-op)")
	assert.Contains(t, out, "[4] press 4 -> -")
	assert.Contains(t, out, "Stats: 4 event(s), 3 press(es), 1 release(s), 5 action(s), 1 pass-through")
}

func TestTrace_OriginFilterJSON(t *testing.T) {
	dir := t.TempDir()
	keymap := writeWASD(t, dir)
	dbPath := recordSession(t, dir, keymap, "sess-a", "press 1", "press 3", "press 1")

	out, err := execute(NewTraceCommand(&RootOptions{Format: "json"}),
		"--db", dbPath, "--session", "sess-a", "--origin", "ad")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	result := resp.Data
	require.Len(t, result.Timeline, 3, "events without matching actions are kept")
	assert.Empty(t, result.Timeline[0].Actions)
	assert.Equal(t, []TraceAction{{Action: "release A", Origin: "ad"}}, result.Timeline[1].Actions)
	assert.Equal(t, []TraceAction{{Action: "release D", Origin: "ad"}}, result.Timeline[2].Actions)
	assert.Equal(t, 2, result.Stats.Actions)
	assert.Equal(t, 0, result.Stats.PassThrough)
}

func TestTrace_SessionNotFound(t *testing.T) {
	dir := t.TempDir()
	keymap := writeWASD(t, dir)
	dbPath := recordSession(t, dir, keymap, "sess-a", "press 1")

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "session not found: nope")
}

func TestTrace_NoDatabase(t *testing.T) {
	_, err := execute(NewTraceCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database")
}

func TestBuildTrace_OriginFilterAcceptsEitherSpelling(t *testing.T) {
	events := []store.Event{{
		SessionID: "s", Seq: 1, Kind: store.KindPress, Position: 1, HandledBy: "ax\u00e9",
		Actions: []store.Action{
			{Kind: store.KindRelease, Usage: hid.KeyA, Origin: "ax\u00e9", Applied: true},
			{Kind: store.KindPress, Usage: hid.KeyD, Origin: "kp", Applied: true},
		},
	}}

	result := buildTrace(store.Session{ID: "s"}, events, "axe\u0301")
	assert.Equal(t, []TraceAction{{Action: "release A", Origin: "ax\u00e9"}}, result.Timeline[0].Actions)
}
