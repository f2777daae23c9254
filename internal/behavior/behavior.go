// Package behavior implements keymap behaviors: the units a key position's
// binding invokes when the position is pressed or released.
//
// A behavior receives the binding that triggered it (behavior name plus one
// parameter, usually a key usage) and an opaque event context, and returns a
// Result telling the dispatcher whether the event is finished or should
// continue down the position's binding chain.
//
// Behaviors are driven from a single dispatch goroutine. Implementations do
// not lock their own state.
package behavior

import (
	"fmt"

	"github.com/roach88/nullbind/internal/hid"
)

// Result tells the dispatcher what to do with an event after a behavior ran.
type Result int

const (
	// Handled means the event is fully consumed and must not be forwarded.
	Handled Result = iota + 1
	// PassThrough means the next binding in the chain should see the event.
	PassThrough
)

// String returns "handled" or "pass_through".
func (r Result) String() string {
	switch r {
	case Handled:
		return "handled"
	case PassThrough:
		return "pass_through"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Binding is one entry in a key position's chain: which behavior instance to
// invoke and its parameter.
type Binding struct {
	Behavior string
	Param    hid.Usage
}

// String renders the binding in keymap syntax, e.g. "ad A".
func (b Binding) String() string {
	if b.Param == hid.UsageNone {
		return b.Behavior
	}
	return b.Behavior + " " + b.Param.String()
}

// Event is the context delivered with a binding. Behaviors in this package
// do not inspect it.
type Event struct {
	Position  int
	Timestamp int64
}

// Behavior is implemented by every keymap behavior.
type Behavior interface {
	// Name returns the instance name bindings refer to.
	Name() string
	OnPressed(b Binding, ev Event) Result
	OnReleased(b Binding, ev Event) Result
}

// Releaser is the HID output a resolver needs: a single "release X" call.
type Releaser interface {
	Release(u hid.Usage) bool
}

// Output is the HID output used by behaviors that also press keys.
// *hid.Keyboard implements it.
type Output interface {
	Releaser
	Press(u hid.Usage) bool
}
