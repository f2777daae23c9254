package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/nullbind/internal/behavior"
	"github.com/roach88/nullbind/internal/config"
	"github.com/roach88/nullbind/internal/engine"
	"github.com/roach88/nullbind/internal/hid"
	"github.com/roach88/nullbind/internal/store"
	"github.com/roach88/nullbind/internal/testutil"
)

// Harness drives one scenario through a real engine.
type Harness struct {
	store   *store.Store
	engine  *engine.Engine
	session string
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// An error is returned only when the scenario cannot run at all; failed
// expectations are reported in the Result.
//
// Execution flow:
//  1. Load the keymap and build an engine that logs to the database
//  2. Process each flow step, checking its expect clause
//  3. Check the event log holds every processed event
//  4. Capture the final report and resolver states
//  5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	km, err := config.LoadKeymap(scenario.Keymap)
	if err != nil {
		return nil, fmt.Errorf("failed to load keymap: %w", err)
	}
	return RunWithKeymap(scenario, km)
}

// RunWithKeymap executes a scenario against an already loaded keymap,
// ignoring scenario.Keymap.
func RunWithKeymap(scenario *Scenario, km *config.Keymap) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := engine.New(km, hid.NewKeyboard(),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		engine.WithRecorder(st),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	h := &Harness{
		store:   st,
		engine:  eng,
		session: eng.Session(),
		logger:  logger,
	}

	ctx := context.Background()
	result := NewResult()

	h.executeFlow(ctx, scenario.Flow, result)
	if err := h.checkLog(ctx, result); err != nil {
		return nil, err
	}
	h.captureState(result)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeFlow processes every step. Engine errors fail the step but the
// flow continues, as the Run loop would.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) {
	for i, step := range flow {
		pos, press := step.Position()
		ev := engine.Release(pos)
		if press {
			ev = engine.Press(pos)
		}

		out, err := h.engine.Process(ctx, ev)
		if err != nil {
			result.AddError(fmt.Sprintf("flow[%d] %s %d: %v", i, ev.Kind, pos, err))
			continue
		}

		te := TraceEvent{
			Seq:       out.Seq,
			Event:     fmt.Sprintf("%s %d", ev.Kind, pos),
			HandledBy: out.HandledBy,
			Actions:   make([]TraceAction, 0, len(out.Actions)),
			Report:    h.engine.Keyboard().Report().String(),
		}
		for _, a := range out.Actions {
			te.Actions = append(te.Actions, TraceAction{Action: a.String(), Origin: a.Origin, NoOp: !a.Applied})
		}
		result.Trace = append(result.Trace, te)

		if step.Expect != nil {
			if msg := checkExpect(step.Expect, out.Actions); msg != "" {
				result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, te.Event, msg))
			}
		}

		h.logger.Info("flow step completed",
			"step", i,
			"event", te.Event,
			"seq", out.Seq,
			"handled_by", out.HandledBy,
			"actions", len(out.Actions),
		)
	}
}

// checkExpect compares issued actions with an exact expected list.
func checkExpect(expect []string, got []hid.Action) string {
	want := make([]string, len(expect))
	for i, s := range expect {
		a, err := hid.ParseAction(s)
		if err != nil {
			return err.Error()
		}
		want[i] = a.String()
	}

	have := make([]string, len(got))
	for i, a := range got {
		have[i] = a.String()
	}

	if strings.Join(want, ", ") != strings.Join(have, ", ") {
		return fmt.Sprintf("expected actions [%s], got [%s]", strings.Join(want, ", "), strings.Join(have, ", "))
	}
	return ""
}

// checkLog verifies the event log recorded exactly the traced events.
func (h *Harness) checkLog(ctx context.Context, result *Result) error {
	logged, err := h.store.ReadEvents(ctx, h.session)
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}
	if len(logged) != len(result.Trace) {
		result.AddError(fmt.Sprintf("event log has %d events, trace has %d", len(logged), len(result.Trace)))
		return nil
	}
	for i, rec := range logged {
		if rec.Seq != result.Trace[i].Seq || len(rec.Actions) != len(result.Trace[i].Actions) {
			result.AddError(fmt.Sprintf("event log diverges from trace at seq %d", rec.Seq))
			return nil
		}
	}
	return nil
}

func (h *Harness) captureState(result *Result) {
	result.Pressed = h.engine.Keyboard().Pressed()
	for _, def := range h.engine.Keymap().Behaviors {
		if def.Kind != behavior.KindSOCD {
			continue
		}
		if r, ok := h.engine.Resolver(def.Name); ok {
			result.Resolvers[def.Name] = r.State()
		}
	}
}
