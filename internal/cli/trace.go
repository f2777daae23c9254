package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/nullbind/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - list sessions when empty
	Origin   string // optional - only show actions from this behavior
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	ID         string `json:"id"`
	KeymapName string `json:"keymap_name"`
	KeymapHash string `json:"keymap_hash"`
	Events     int    `json:"events"`
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq       int64         `json:"seq"`
	Kind      string        `json:"kind"`
	Position  int           `json:"position"`
	Timestamp int64         `json:"timestamp"`
	HandledBy string        `json:"handled_by,omitempty"`
	Actions   []TraceAction `json:"actions"`
}

// TraceAction is one logged HID instruction.
type TraceAction struct {
	Action string `json:"action"`
	Origin string `json:"origin"`
	NoOp   bool   `json:"noop,omitempty"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  SessionSummary `json:"session"`
	Timeline []TraceEvent   `json:"timeline"`
	Stats    TraceStats     `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Events      int `json:"events"`
	Presses     int `json:"presses"`
	Releases    int `json:"releases"`
	Actions     int `json:"actions"`
	PassThrough int `json:"pass_through"` // events no behavior handled
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect the event log",
		Long: `Inspect sessions recorded by "nullbind run --db".

Without --session, lists every session in the log. With --session, prints
its timeline: each event, the behavior that handled it and the HID actions
it issued.

Examples:
  nullbind trace --db ./nullbind.db
  nullbind trace --db ./nullbind.db --session 0191...
  nullbind trace --db ./nullbind.db --session 0191... --origin ad --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event log (default $NULLBIND_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "only show actions issued by this behavior")

	return cmd
}

// openLog opens an existing event log. The flag wins over NULLBIND_DB.
func openLog(flag string, opts *RootOptions) (*store.Store, error) {
	path := flag
	if path == "" {
		path = opts.Env.Database
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no database: pass --db or set NULLBIND_DB")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openLog(opts.Database, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, formatter)
	}

	sess, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("session not found: %s", opts.Session), nil)
		return WrapExitError(ExitCommandError, "session not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	events, err := st.ReadEvents(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := buildTrace(sess, events, opts.Origin)
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		events, err := st.ReadEvents(ctx, s.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		summaries = append(summaries, SessionSummary{
			ID:         s.ID,
			KeymapName: s.KeymapName,
			KeymapHash: s.KeymapHash,
			Events:     len(events),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  %-24s %5d event(s)\n", s.ID, s.KeymapName, s.Events)
	}
	return nil
}

// buildTrace converts logged events to the timeline, dropping actions from
// other behaviors when origin is set. Events are kept even when all their
// actions are filtered out.
func buildTrace(sess store.Session, events []store.Event, origin string) TraceResult {
	// Origins are logged in NFC.
	origin = norm.NFC.String(origin)
	result := TraceResult{
		Session: SessionSummary{
			ID:         sess.ID,
			KeymapName: sess.KeymapName,
			KeymapHash: sess.KeymapHash,
			Events:     len(events),
		},
		Timeline: make([]TraceEvent, 0, len(events)),
	}

	for _, ev := range events {
		te := TraceEvent{
			Seq:       ev.Seq,
			Kind:      ev.Kind,
			Position:  ev.Position,
			Timestamp: ev.Timestamp,
			HandledBy: ev.HandledBy,
			Actions:   make([]TraceAction, 0, len(ev.Actions)),
		}
		for _, a := range ev.Actions {
			if origin != "" && a.Origin != origin {
				continue
			}
			te.Actions = append(te.Actions, TraceAction{
				Action: a.Kind + " " + a.Usage.String(),
				Origin: a.Origin,
				NoOp:   !a.Applied,
			})
		}
		result.Timeline = append(result.Timeline, te)

		result.Stats.Events++
		switch ev.Kind {
		case store.KindPress:
			result.Stats.Presses++
		case store.KindRelease:
			result.Stats.Releases++
		}
		result.Stats.Actions += len(te.Actions)
		if ev.HandledBy == "" {
			result.Stats.PassThrough++
		}
	}
	return result
}

func outputTraceText(formatter *OutputFormatter, result TraceResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Session: %s\n", result.Session.ID)
	fmt.Fprintf(w, "Keymap:  %s\n", result.Session.KeymapName)
	formatter.VerboseLog("Keymap hash: %s", result.Session.KeymapHash)
	fmt.Fprintln(w)

	for _, ev := range result.Timeline {
		handled := ev.HandledBy
		if handled == "" {
			handled = "-"
		}
		fmt.Fprintf(w, "[%d] %s %d -> %s\n", ev.Seq, ev.Kind, ev.Position, handled)
		for _, a := range ev.Actions {
			fmt.Fprintf(w, "      %s\n", actionLabel(a.Action, a.Origin, a.NoOp))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d event(s), %d press(es), %d release(s), %d action(s), %d pass-through\n",
		result.Stats.Events, result.Stats.Presses, result.Stats.Releases, result.Stats.Actions, result.Stats.PassThrough)
}
