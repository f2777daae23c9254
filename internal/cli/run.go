package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/nullbind/internal/engine"
	"github.com/roach88/nullbind/internal/hid"
	"github.com/roach88/nullbind/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Events   string // event script path, "-" or empty for stdin
	Database string // overrides NULLBIND_DB

	// SessionGenerator allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionGenerator
}

// RunEvent is one processed event as printed by run.
type RunEvent struct {
	Seq       int64       `json:"seq"`
	Event     string      `json:"event"`
	HandledBy string      `json:"handled_by,omitempty"`
	Actions   []RunAction `json:"actions"`
	Report    string      `json:"report"`
}

// RunAction is one HID instruction.
type RunAction struct {
	Action string `json:"action"`
	Origin string `json:"origin"`
	NoOp   bool   `json:"noop,omitempty"` // report was already in that state
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <keymap.cue>",
		Short: "Feed key events through a keymap",
		Long: `Run key position events through a keymap and print the HID actions.

Events are read one per line from --events or stdin:

  press 1        # position 1 goes down
  release 1 250  # optional timestamp

After each event the issued actions and the resulting keyboard report are
printed. With --db (or NULLBIND_DB) every event is also written to the
SQLite event log for trace and replay.

Examples:
  nullbind run wasd.cue --events moves.txt
  echo "press 1" | nullbind run wasd.cue --db ./nullbind.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Events, "events", "", "event script (default stdin)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event log (default $NULLBIND_DB)")

	return cmd
}

func runEngine(opts *RunOptions, keymapPath string, cmd *cobra.Command) error {
	logger := opts.Logger(cmd)
	formatter := newFormatter(opts.RootOptions, cmd)

	km, err := loadKeymap(keymapPath)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load keymap", err)
	}

	input, closeInput, err := openEvents(opts.Events, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open events", err)
	}
	defer closeInput()

	sessions := opts.SessionGenerator
	if sessions == nil {
		sessions = engine.UUIDv7Generator{}
	}

	kb := hid.NewKeyboard()
	printer := &runPrinter{format: opts.Format, w: cmd.OutOrStdout(), kb: kb}
	engOpts := []engine.Option{
		engine.WithSessionGenerator(sessions),
		engine.WithLogger(logger),
		engine.WithObserver(printer.print),
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.Env.Database
	}
	if dbPath != "" {
		logger.Info("opening database", "path", dbPath)
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithRecorder(st))
	}

	eng, err := engine.New(km, kb, engOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The reader feeds the queue; Run drains it after Stop.
	readErr := make(chan error, 1)
	go func() {
		defer eng.Stop()
		readErr <- scanEvents(input, func(ev engine.Event) error {
			if !eng.Enqueue(ev) {
				return errors.New("engine stopped")
			}
			return nil
		})
	}()

	runErr := eng.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}
	// A clean return means the reader stopped the engine and has finished.
	// After a signal the reader may still be blocked on stdin.
	if runErr == nil {
		if err := <-readErr; err != nil {
			_ = formatter.Error(errorCode(err), err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
	}

	if opts.Format != "json" {
		fmt.Fprintf(cmd.OutOrStdout(), "session %s: %d event(s), report %s\n", eng.Session(), printer.count, kb.Report())
	}
	logger.Info("engine stopped", "session", eng.Session(), "events", printer.count)
	return nil
}

// openEvents returns the event source. "" and "-" mean stdin.
func openEvents(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// actionLabel renders an action as "release A (kp)", marking instructions
// that left the report unchanged.
func actionLabel(action, origin string, noop bool) string {
	if noop {
		return fmt.Sprintf("%s (%s, no-op)", action, origin)
	}
	return fmt.Sprintf("%s (%s)", action, origin)
}

// runPrinter writes each outcome as it is processed. It runs on the engine
// goroutine, so the report it reads is the one right after the event.
type runPrinter struct {
	format string
	w      io.Writer
	kb     *hid.Keyboard
	count  int
}

func (p *runPrinter) print(out engine.Outcome) {
	p.count++

	ev := RunEvent{
		Seq:       out.Seq,
		Event:     fmt.Sprintf("%s %d", out.Event.Kind, out.Event.Position),
		HandledBy: out.HandledBy,
		Actions:   make([]RunAction, 0, len(out.Actions)),
		Report:    p.kb.Report().String(),
	}
	for _, a := range out.Actions {
		ev.Actions = append(ev.Actions, RunAction{Action: a.String(), Origin: a.Origin, NoOp: !a.Applied})
	}

	if p.format == "json" {
		// One object per line so output can be streamed.
		_ = json.NewEncoder(p.w).Encode(ev)
		return
	}

	parts := make([]string, len(ev.Actions))
	for i, a := range ev.Actions {
		parts[i] = actionLabel(a.Action, a.Origin, a.NoOp)
	}
	handled := ev.HandledBy
	if handled == "" {
		handled = "-"
	}
	fmt.Fprintf(p.w, "%4d  %-12s %-6s [%s]  %s\n", ev.Seq, ev.Event, handled, strings.Join(parts, ", "), ev.Report)
}
