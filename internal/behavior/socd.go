package behavior

import (
	"fmt"
	"log/slog"

	"github.com/roach88/nullbind/internal/hid"
)

// Pair is an opposing pair of inputs. At most one member is reported active.
type Pair struct {
	A hid.Usage
	B hid.Usage
}

// Validate checks that both members are set and distinct.
func (p Pair) Validate() error {
	if p.A == hid.UsageNone || p.B == hid.UsageNone {
		return fmt.Errorf("opposing pair needs two keys, got %s/%s", p.A, p.B)
	}
	if p.A == p.B {
		return fmt.Errorf("opposing pair members must differ, got %s twice", p.A)
	}
	return nil
}

// Contains reports whether u is a member of the pair.
func (p Pair) Contains(u hid.Usage) bool {
	return u == p.A || u == p.B
}

// String renders the pair as "A/D".
func (p Pair) String() string {
	return p.A.String() + "/" + p.B.String()
}

// ResolverState is a snapshot of a resolver's bookkeeping.
type ResolverState struct {
	AActive bool
	BActive bool
}

// Resolver settles SOCD conflicts for one opposing pair: the last press
// wins and the opposite member is released.
//
// The flags track press/release notifications as the resolver saw them. A
// member released by the resolver stays inactive even while its key is still
// physically held, and releasing the winner does not re-activate it.
type Resolver struct {
	name   string
	pair   Pair
	out    Releaser
	logger *slog.Logger

	aActive bool
	bActive bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for diagnostics.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver for pair writing synthetic releases to out.
// Both members start inactive.
func NewResolver(name string, pair Pair, out Releaser, opts ...ResolverOption) (*Resolver, error) {
	if err := pair.Validate(); err != nil {
		return nil, fmt.Errorf("resolver %s: %w", name, err)
	}
	if out == nil {
		return nil, fmt.Errorf("resolver %s: nil HID output", name)
	}

	r := &Resolver{
		name:   name,
		pair:   pair,
		out:    out,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name implements Behavior.
func (r *Resolver) Name() string { return r.name }

// Pair returns the configured opposing pair.
func (r *Resolver) Pair() Pair { return r.pair }

// State returns the current activation flags.
func (r *Resolver) State() ResolverState {
	return ResolverState{AActive: r.aActive, BActive: r.bActive}
}

// OnPressed marks the pressed member active. If the opposite member is
// active it is released on the HID output and marked inactive. A press of a
// member that is already active changes nothing.
func (r *Resolver) OnPressed(b Binding, ev Event) Result {
	switch b.Param {
	case r.pair.A:
		r.press(&r.aActive, &r.bActive, r.pair.B)
	case r.pair.B:
		r.press(&r.bActive, &r.aActive, r.pair.A)
	default:
		r.ignore("press", b, ev)
	}
	return Handled
}

// OnReleased marks the released member inactive whatever its prior state.
func (r *Resolver) OnReleased(b Binding, ev Event) Result {
	switch b.Param {
	case r.pair.A:
		r.aActive = false
	case r.pair.B:
		r.bActive = false
	default:
		r.ignore("release", b, ev)
	}
	return Handled
}

func (r *Resolver) press(self, opposite *bool, oppositeKey hid.Usage) {
	if *self {
		return
	}
	*self = true
	if *opposite {
		r.out.Release(oppositeKey)
		*opposite = false
		r.logger.Debug("socd conflict resolved",
			"behavior", r.name,
			"released", oppositeKey.String(),
		)
	}
}

func (r *Resolver) ignore(op string, b Binding, ev Event) {
	r.logger.Debug("socd ignoring key outside pair",
		"behavior", r.name,
		"op", op,
		"key", b.Param.String(),
		"pair", r.pair.String(),
		"position", ev.Position,
	)
}
