package harness

import (
	"github.com/roach88/nullbind/internal/behavior"
	"github.com/roach88/nullbind/internal/hid"
)

// TraceAction is one HID instruction in the trace.
type TraceAction struct {
	Action string `json:"action"`         // e.g. "release A"
	Origin string `json:"origin"`         // behavior that issued it
	NoOp   bool   `json:"noop,omitempty"` // report was already in that state
}

// TraceEvent is one processed event and what it did to the report.
type TraceEvent struct {
	Seq       int64         `json:"seq"`
	Event     string        `json:"event"` // e.g. "press 3"
	HandledBy string        `json:"handled_by,omitempty"`
	Actions   []TraceAction `json:"actions"`
	Report    string        `json:"report"` // report bytes after the event
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the processed events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Pressed is the final report content, modifiers first.
	Pressed []hid.Usage `json:"-"`

	// Resolvers holds the final state of every SOCD resolver by name.
	Resolvers map[string]behavior.ResolverState `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Resolvers: make(map[string]behavior.ResolverState),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Actions returns every action in the trace, in issue order.
func (r *Result) Actions() []TraceAction {
	var all []TraceAction
	for _, ev := range r.Trace {
		all = append(all, ev.Actions...)
	}
	return all
}
