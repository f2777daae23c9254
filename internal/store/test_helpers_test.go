package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/nullbind/internal/hid"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a session with a fixed keymap.
func createTestSession(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.WriteSession(context.Background(), Session{ID: id, KeymapName: "wasd.cue", KeymapHash: "abc123"})
	if err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
}

// conflictEvent is the press of D while A is held: ad releases A, kp presses D.
func conflictEvent(session string, seq int64) Event {
	return Event{
		SessionID: session,
		Seq:       seq,
		Kind:      KindPress,
		Position:  3,
		Timestamp: seq * 10,
		HandledBy: "ad",
		Actions: []Action{
			{Kind: KindRelease, Usage: hid.KeyA, Origin: "ad", Applied: true},
			{Kind: KindPress, Usage: hid.KeyD, Origin: "kp", Applied: true},
		},
	}
}
