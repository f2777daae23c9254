package behavior

import (
	"fmt"
	"log/slog"
	"sort"
)

// Kind selects the behavior implementation a Definition builds.
type Kind string

const (
	KindKeyPress Kind = "key_press"
	KindSOCD     Kind = "socd"
	KindNone     Kind = "none"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindKeyPress, KindSOCD, KindNone}

// Definition describes one behavior instance from configuration.
// Pair is only used by KindSOCD.
type Definition struct {
	Name string
	Kind Kind
	Pair Pair
}

// Registry holds the behavior instances built for a keymap, by name.
type Registry struct {
	byName    map[string]Behavior
	resolvers map[string]*Resolver
	names     []string
}

// Build constructs one behavior per definition, all writing to out.
// Names must be unique. Each KindSOCD definition gets its own Resolver with
// its own state.
func Build(defs []Definition, out Output, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reg := &Registry{
		byName:    make(map[string]Behavior, len(defs)),
		resolvers: make(map[string]*Resolver),
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("behavior definition with empty name")
		}
		if _, dup := reg.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate behavior %q", def.Name)
		}

		var b Behavior
		switch def.Kind {
		case KindKeyPress:
			b = NewKeyPress(def.Name, out)
		case KindNone:
			b = NewNone(def.Name)
		case KindSOCD:
			r, err := NewResolver(def.Name, def.Pair, out, WithResolverLogger(logger))
			if err != nil {
				return nil, err
			}
			reg.resolvers[def.Name] = r
			b = r
		default:
			return nil, fmt.Errorf("behavior %q: unknown kind %q", def.Name, def.Kind)
		}

		reg.byName[def.Name] = b
		reg.names = append(reg.names, def.Name)
	}

	sort.Strings(reg.names)
	return reg, nil
}

// Lookup returns the behavior named name.
func (r *Registry) Lookup(name string) (Behavior, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Resolver returns the SOCD resolver named name.
func (r *Registry) Resolver(name string) (*Resolver, bool) {
	res, ok := r.resolvers[name]
	return res, ok
}

// Names returns every behavior name in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
