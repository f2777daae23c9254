package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nullbind/internal/hid"
)

// ReadSession returns the session with the given id, or ErrNotFound.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, keymap_name, keymap_hash FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.KeymapName, &sess.KeymapHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every session in insertion order.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keymap_name, keymap_hash FROM sessions ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.KeymapName, &sess.KeymapHash); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadEvents returns a session's events ordered by seq, each with its
// actions ordered by idx. Returns an empty slice if the session has no events.
func (s *Store) ReadEvents(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, position, timestamp, handled_by
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	events := []Event{}
	index := make(map[int64]int)
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.SessionID, &ev.Seq, &ev.Kind, &ev.Position, &ev.Timestamp, &ev.HandledBy); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		index[ev.Seq] = len(events)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	rows.Close()

	actions, err := s.db.QueryContext(ctx, `
		SELECT event_seq, kind, usage, origin, applied
		FROM hid_actions
		WHERE session_id = ?
		ORDER BY event_seq ASC, idx ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer actions.Close()

	for actions.Next() {
		var (
			seq   int64
			a     Action
			usage int
		)
		if err := actions.Scan(&seq, &a.Kind, &usage, &a.Origin, &a.Applied); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Usage = hid.Usage(usage)
		if i, ok := index[seq]; ok {
			events[i].Actions = append(events[i].Actions, a)
		}
	}
	if err := actions.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}

	return events, nil
}

// CountActions returns how many times usage was pressed or released
// (per kind) in a session. Instructions that left the report unchanged
// are counted too.
func (s *Store) CountActions(ctx context.Context, sessionID, kind string, usage hid.Usage) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM hid_actions
		WHERE session_id = ? AND usage = ? AND kind = ?
	`, sessionID, int(usage), kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}
