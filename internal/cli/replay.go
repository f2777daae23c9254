package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nullbind/internal/engine"
	"github.com/roach88/nullbind/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string   `json:"session_id"`
	Events        int      `json:"events"`
	KeymapChanged bool     `json:"keymap_changed"`
	Mismatches    []string `json:"mismatches,omitempty"`
	Deterministic bool     `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Keymap           string                `json:"keymap"`
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <keymap.cue>",
		Short: "Replay the event log and verify determinism",
		Long: `Re-run logged sessions through a fresh engine and compare the outcome.

Every logged event is fed to a new engine built from <keymap.cue>. The
behavior that handled it and the HID actions it issued must match the log
exactly. A keymap whose bytes differ from the one recorded is reported even
when every event matches.

Exit codes:
  0 - All sessions replayed identically
  1 - A session diverged or was recorded with a different keymap
  2 - Command error (database not found, etc.)

Examples:
  nullbind replay --db ./nullbind.db wasd.cue
  nullbind replay --db ./nullbind.db --session 0191... wasd.cue
  nullbind replay --db ./nullbind.db wasd.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event log (default $NULLBIND_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, keymapPath string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(cmd)

	km, err := loadKeymap(keymapPath)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load keymap", err)
	}

	st, err := openLog(opts.Database, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	var ids []string
	if opts.Session != "" {
		ids = []string{opts.Session}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{
		Keymap:           km.Name,
		Sessions:         make([]ReplaySessionResult, 0, len(ids)),
		TotalSessions:    len(ids),
		AllDeterministic: true,
	}

	for _, id := range ids {
		res, err := engine.Replay(ctx, st, id, km, engine.WithLogger(logger))
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("session not found: %s", id), nil)
			return WrapExitError(ExitCommandError, "session not found", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}

		sr := ReplaySessionResult{
			SessionID:     res.SessionID,
			Events:        res.Events,
			KeymapChanged: res.KeymapChanged,
			Mismatches:    res.Mismatches,
			Deterministic: res.Identical(),
		}
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s) against %s\n", result.TotalSessions, result.Keymap)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.SessionID)
		fmt.Fprintf(w, "  Events: %d\n", s.Events)

		if s.KeymapChanged {
			fmt.Fprintln(w, "  Warning: keymap differs from the one recorded")
		}
		for _, m := range s.Mismatches {
			fmt.Fprintf(w, "  %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions replayed identically")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
