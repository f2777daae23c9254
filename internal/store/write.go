package store

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("write session: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, keymap_name, keymap_hash)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, norm.NFC.String(sess.KeymapName), sess.KeymapHash)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteEvent inserts an event and its HID actions in one transaction.
// A second write of the same (session, seq) is silently ignored, actions
// included.
func (s *Store) WriteEvent(ctx context.Context, ev Event) (err error) {
	if err := validateKind(ev.Kind); err != nil {
		return fmt.Errorf("write event %d: %w", ev.Seq, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write event %d: begin: %w", ev.Seq, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, kind, position, timestamp, handled_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, ev.SessionID, ev.Seq, ev.Kind, ev.Position, ev.Timestamp, norm.NFC.String(ev.HandledBy))
	if err != nil {
		return fmt.Errorf("write event %d: %w", ev.Seq, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write event %d: %w", ev.Seq, err)
	}
	if n > 0 {
		for i, a := range ev.Actions {
			if err := validateKind(a.Kind); err != nil {
				return fmt.Errorf("write event %d action %d: %w", ev.Seq, i, err)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO hid_actions (session_id, event_seq, idx, kind, usage, origin, applied)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, ev.SessionID, ev.Seq, i, a.Kind, int(a.Usage), norm.NFC.String(a.Origin), a.Applied)
			if err != nil {
				return fmt.Errorf("write event %d action %d: %w", ev.Seq, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write event %d: commit: %w", ev.Seq, err)
	}
	return nil
}

func validateKind(kind string) error {
	if kind != KindPress && kind != KindRelease {
		return fmt.Errorf("invalid kind %q", kind)
	}
	return nil
}
