package behavior

import "github.com/roach88/nullbind/internal/hid"

// KeyPress presses its parameter on press and releases it on release.
//
// It returns PassThrough so a following binding on the same position (for
// example a Resolver) observes the event after the key is in the report.
type KeyPress struct {
	name string
	out  Output
}

// NewKeyPress creates a key press behavior writing to out.
func NewKeyPress(name string, out Output) *KeyPress {
	return &KeyPress{name: name, out: out}
}

// Name implements Behavior.
func (k *KeyPress) Name() string { return k.name }

// OnPressed implements Behavior.
func (k *KeyPress) OnPressed(b Binding, _ Event) Result {
	if b.Param != hid.UsageNone {
		k.out.Press(b.Param)
	}
	return PassThrough
}

// OnReleased implements Behavior.
func (k *KeyPress) OnReleased(b Binding, _ Event) Result {
	if b.Param != hid.UsageNone {
		k.out.Release(b.Param)
	}
	return PassThrough
}

// None swallows every event.
type None struct {
	name string
}

// NewNone creates a behavior that consumes events and does nothing.
func NewNone(name string) *None {
	return &None{name: name}
}

// Name implements Behavior.
func (n *None) Name() string { return n.name }

// OnPressed implements Behavior.
func (n *None) OnPressed(Binding, Event) Result { return Handled }

// OnReleased implements Behavior.
func (n *None) OnReleased(Binding, Event) Result { return Handled }
