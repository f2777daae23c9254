package engine

import (
	"context"
	"fmt"

	"github.com/roach88/nullbind/internal/config"
	"github.com/roach88/nullbind/internal/hid"
	"github.com/roach88/nullbind/internal/store"
)

// ReplayResult reports whether a logged session reproduces.
type ReplayResult struct {
	SessionID     string
	Events        int
	KeymapChanged bool     // keymap hash differs from the one logged
	Mismatches    []string // one entry per diverging event
}

// Identical reports whether the replay matched the log exactly.
func (r *ReplayResult) Identical() bool {
	return !r.KeymapChanged && len(r.Mismatches) == 0
}

// Replay re-runs a logged session's events through a fresh engine built
// from km and compares each outcome with what was logged.
//
// Behaviors are deterministic functions of the event sequence, so a session
// replayed against the same keymap must produce the same actions in the same
// order. The replay engine has no recorder; the log is only read.
func Replay(ctx context.Context, st *store.Store, sessionID string, km *config.Keymap, opts ...Option) (*ReplayResult, error) {
	sess, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	logged, err := st.ReadEvents(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	result := &ReplayResult{
		SessionID:     sessionID,
		Events:        len(logged),
		KeymapChanged: sess.KeymapHash != km.Hash,
	}

	var start int64
	if len(logged) > 0 {
		start = logged[0].Seq - 1
	}
	opts = append(opts,
		WithClock(NewClockAt(start)),
		WithSessionGenerator(NewFixedGenerator(sessionID)),
		WithRecorder(nil),
		WithObserver(nil),
	)
	eng, err := New(km, hid.NewKeyboard(), opts...)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	for _, rec := range logged {
		kind, err := ParseEventKind(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("replay event %d: %w", rec.Seq, err)
		}

		out, err := eng.Process(ctx, Event{Kind: kind, Position: rec.Position, Timestamp: rec.Timestamp})
		if err != nil {
			result.Mismatches = append(result.Mismatches, fmt.Sprintf("seq %d: %v", rec.Seq, err))
			continue
		}
		if diff := diffOutcome(rec, out); diff != "" {
			result.Mismatches = append(result.Mismatches, fmt.Sprintf("seq %d: %s", rec.Seq, diff))
		}
	}

	return result, nil
}

func diffOutcome(rec store.Event, out Outcome) string {
	if rec.Seq != out.Seq {
		return fmt.Sprintf("seq replayed as %d", out.Seq)
	}
	if rec.HandledBy != out.HandledBy {
		return fmt.Sprintf("handled by %q, logged %q", out.HandledBy, rec.HandledBy)
	}
	if len(rec.Actions) != len(out.Actions) {
		return fmt.Sprintf("%d actions, logged %d", len(out.Actions), len(rec.Actions))
	}
	for i, a := range out.Actions {
		want := rec.Actions[i]
		if a.Kind.String() != want.Kind || a.Usage != want.Usage || a.Origin != want.Origin {
			return fmt.Sprintf("action %d is %s from %s, logged %s %s from %s",
				i, a, a.Origin, want.Kind, want.Usage, want.Origin)
		}
		if a.Applied != want.Applied {
			return fmt.Sprintf("action %d (%s) applied=%t, logged applied=%t", i, a, a.Applied, want.Applied)
		}
	}
	return ""
}
