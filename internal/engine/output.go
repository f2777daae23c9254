package engine

import "github.com/roach88/nullbind/internal/hid"

// tracingOutput sits between behaviors and the keyboard and records every
// instruction issued while an event is being processed. The engine sets
// origin before invoking each binding.
//
// Releases reach the keyboard at once. Presses are held until the chain
// walk ends, so a resolver's release of the opposite key always lands
// before the new key is registered, even when the report is full.
//
// Only the Run goroutine touches it.
type tracingOutput struct {
	kb      *hid.Keyboard
	origin  string
	actions []hid.Action
	pending []hid.Action // presses waiting for flush
}

func newTracingOutput(kb *hid.Keyboard) *tracingOutput {
	return &tracingOutput{kb: kb}
}

// Press implements behavior.Output. It reports whether the press is
// expected to change the report; the keyboard sees it on flush.
func (o *tracingOutput) Press(u hid.Usage) bool {
	for _, p := range o.pending {
		if p.Usage == u {
			return false
		}
	}
	o.pending = append(o.pending, hid.Action{Kind: hid.ActionPress, Usage: u, Origin: o.origin})
	return !o.kb.IsPressed(u)
}

// Release implements behavior.Releaser. A release of a key still waiting
// to be pressed cancels the press.
func (o *tracingOutput) Release(u hid.Usage) bool {
	for i, p := range o.pending {
		if p.Usage == u {
			o.pending = append(o.pending[:i], o.pending[i+1:]...)
			return true
		}
	}
	applied := o.kb.Release(u)
	o.actions = append(o.actions, hid.Action{Kind: hid.ActionRelease, Usage: u, Origin: o.origin, Applied: applied})
	return applied
}

// flush applies held presses in the order they were issued.
func (o *tracingOutput) flush() {
	for _, p := range o.pending {
		p.Applied = o.kb.Press(p.Usage)
		o.actions = append(o.actions, p)
	}
	o.pending = nil
}

// take flushes held presses and returns the recorded actions, starting a
// new, empty record.
func (o *tracingOutput) take() []hid.Action {
	o.flush()
	actions := o.actions
	o.actions = nil
	o.origin = ""
	return actions
}
