package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/nullbind/internal/behavior"
	"github.com/roach88/nullbind/internal/hid"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s:", ev.Seq, ev.Event)
			for _, a := range ev.Actions {
				if a.NoOp {
					fmt.Fprintf(&buf, " %s (%s, no-op);", a.Action, a.Origin)
				} else {
					fmt.Fprintf(&buf, " %s (%s);", a.Action, a.Origin)
				}
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// normalizeAction rewrites an action string to the form the trace uses, so
// aliases like "release esc" match "release ESCAPE".
func normalizeAction(s string) string {
	a, err := hid.ParseAction(s)
	if err != nil {
		return s
	}
	return a.String()
}

// assertHIDCount checks that an action was issued exactly Count times,
// counting only actions from Origin when it is set.
func assertHIDCount(result *Result, assertion Assertion) error {
	want := normalizeAction(assertion.Action)

	count := 0
	for _, a := range result.Actions() {
		if a.Action != want {
			continue
		}
		if assertion.Origin != "" && a.Origin != assertion.Origin {
			continue
		}
		count++
	}

	if count != assertion.Count {
		what := want
		if assertion.Origin != "" {
			what += " from " + assertion.Origin
		}
		return &AssertionError{
			Type:     AssertHIDCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertHIDOrder checks that the actions occur in the given relative order.
// Other actions may appear in between.
func assertHIDOrder(result *Result, assertion Assertion) error {
	actions := result.Actions()

	next := 0
	for i, s := range assertion.Actions {
		want := normalizeAction(s)
		found := false
		for next < len(actions) {
			a := actions[next]
			next++
			if a.Action == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertHIDOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual:   fmt.Sprintf("no %s after %v", want, assertion.Actions[:i]),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

// assertFinalReport checks the exact set of keys held at the end, in report
// order (modifiers first, then keys in press order).
func assertFinalReport(result *Result, assertion Assertion) error {
	want := make([]string, 0, len(assertion.Keys))
	for _, k := range assertion.Keys {
		u, err := hid.ParseUsage(k)
		if err != nil {
			return err
		}
		want = append(want, u.String())
	}

	have := make([]string, 0, len(result.Pressed))
	for _, u := range result.Pressed {
		have = append(have, u.String())
	}

	if strings.Join(want, " ") != strings.Join(have, " ") {
		return &AssertionError{
			Type:     AssertFinalReport,
			Expected: fmt.Sprintf("keys %v", want),
			Actual:   fmt.Sprintf("keys %v", have),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertResolverState checks a resolver's flags after the flow.
func assertResolverState(result *Result, assertion Assertion) error {
	got, ok := result.Resolvers[assertion.Behavior]
	if !ok {
		return &AssertionError{
			Type:     AssertResolverState,
			Expected: fmt.Sprintf("socd behavior %q", assertion.Behavior),
			Actual:   "no such resolver in the keymap",
		}
	}

	want := behavior.ResolverState{AActive: assertion.AActive, BActive: assertion.BActive}
	if got != want {
		return &AssertionError{
			Type:     AssertResolverState,
			Expected: fmt.Sprintf("%s a_active=%t b_active=%t", assertion.Behavior, want.AActive, want.BActive),
			Actual:   fmt.Sprintf("a_active=%t b_active=%t", got.AActive, got.BActive),
			Trace:    result.Trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertHIDCount:
			err = assertHIDCount(result, assertion)
		case AssertHIDOrder:
			err = assertHIDOrder(result, assertion)
		case AssertFinalReport:
			err = assertFinalReport(result, assertion)
		case AssertResolverState:
			err = assertResolverState(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
