// Package config loads CUE keymaps, environment settings and the process logger.
package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/nullbind/internal/behavior"
	"github.com/roach88/nullbind/internal/hid"
)

//go:embed schema.cue
var schemaCUE string

// Error codes for keymap loading.
const (
	ErrCodeRead     = "K001" // keymap file could not be read
	ErrCodeCUE      = "K002" // CUE syntax or evaluation error
	ErrCodeSchema   = "K003" // keymap does not match the schema
	ErrCodeBehavior = "K004" // invalid behavior definition
	ErrCodeBinding  = "K005" // invalid binding in the keymap
)

// LoadError describes why a keymap was rejected.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Keymap is a validated keymap: behavior definitions and, for every key
// position, the chain of bindings invoked when it is pressed or released.
type Keymap struct {
	Name      string
	Behaviors []behavior.Definition // sorted by name
	Positions [][]behavior.Binding
	Hash      string // sha256 of the source bytes
}

// rawKeymap mirrors the CUE document after schema validation.
type rawKeymap struct {
	Behaviors map[string]rawBehavior `json:"behaviors"`
	Keymap    [][]string             `json:"keymap"`
}

type rawBehavior struct {
	Kind string   `json:"kind"`
	Pair []string `json:"pair,omitempty"`
}

// LoadKeymap reads and validates a CUE keymap file.
func LoadKeymap(path string) (*Keymap, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading keymap: %v", err)}
	}
	return ParseKeymap(path, src)
}

// ParseKeymap validates CUE keymap source. filename is used in positions.
func ParseKeymap(filename string, src []byte) (*Keymap, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(ErrCodeCUE, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Keymap")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	var raw rawKeymap
	if err := unified.Decode(&raw); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	km, err := buildKeymap(&raw, unified)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(src)
	km.Hash = hex.EncodeToString(sum[:])
	km.Name = filename
	return km, nil
}

func buildKeymap(raw *rawKeymap, v cue.Value) (*Keymap, error) {
	km := &Keymap{}

	names := make([]string, 0, len(raw.Behaviors))
	for name := range raw.Behaviors {
		names = append(names, name)
	}
	sort.Strings(names)

	// Behavior names are held in NFC, the form the event log stores, so
	// origins and handled_by compare equal after a round trip.
	defs := make(map[string]behavior.Definition, len(names))
	for _, rawName := range names {
		rb := raw.Behaviors[rawName]
		pos := v.LookupPath(cue.MakePath(cue.Str("behaviors"), cue.Str(rawName))).Pos()

		name := norm.NFC.String(rawName)
		if _, dup := defs[name]; dup {
			return nil, &LoadError{Code: ErrCodeBehavior, Message: fmt.Sprintf("behavior %q: defined twice under different Unicode forms", name), Pos: pos}
		}

		def := behavior.Definition{Name: name, Kind: behavior.Kind(rb.Kind)}
		switch def.Kind {
		case behavior.KindSOCD:
			if len(rb.Pair) != 2 {
				return nil, &LoadError{Code: ErrCodeBehavior, Message: fmt.Sprintf("behavior %q: socd needs a pair of two keys", name), Pos: pos}
			}
			a, err := hid.ParseUsage(rb.Pair[0])
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBehavior, Message: fmt.Sprintf("behavior %q: %v", name, err), Pos: pos}
			}
			b, err := hid.ParseUsage(rb.Pair[1])
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBehavior, Message: fmt.Sprintf("behavior %q: %v", name, err), Pos: pos}
			}
			def.Pair = behavior.Pair{A: a, B: b}
			if err := def.Pair.Validate(); err != nil {
				return nil, &LoadError{Code: ErrCodeBehavior, Message: fmt.Sprintf("behavior %q: %v", name, err), Pos: pos}
			}
		default:
			if len(rb.Pair) > 0 {
				return nil, &LoadError{Code: ErrCodeBehavior, Message: fmt.Sprintf("behavior %q: pair is only valid for socd", name), Pos: pos}
			}
		}

		defs[name] = def
		km.Behaviors = append(km.Behaviors, def)
	}
	sort.Slice(km.Behaviors, func(i, j int) bool { return km.Behaviors[i].Name < km.Behaviors[j].Name })

	if len(raw.Keymap) == 0 {
		return nil, &LoadError{Code: ErrCodeBinding, Message: "keymap has no positions", Pos: v.Pos()}
	}

	km.Positions = make([][]behavior.Binding, len(raw.Keymap))
	for i, chain := range raw.Keymap {
		pos := v.LookupPath(cue.MakePath(cue.Str("keymap"), cue.Index(i))).Pos()
		if len(chain) == 0 {
			return nil, &LoadError{Code: ErrCodeBinding, Message: fmt.Sprintf("position %d: empty binding chain", i), Pos: pos}
		}

		bindings := make([]behavior.Binding, 0, len(chain))
		for _, text := range chain {
			b, err := parseBinding(text, defs)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBinding, Message: fmt.Sprintf("position %d: %v", i, err), Pos: pos}
			}
			bindings = append(bindings, b)
		}
		km.Positions[i] = bindings
	}

	return km, nil
}

// parseBinding parses "<behavior> [param]" and checks it against defs.
func parseBinding(text string, defs map[string]behavior.Definition) (behavior.Binding, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return behavior.Binding{}, fmt.Errorf("binding %q: want \"<behavior> [key]\"", text)
	}

	def, ok := defs[norm.NFC.String(fields[0])]
	if !ok {
		return behavior.Binding{}, fmt.Errorf("binding %q: undefined behavior %q", text, fields[0])
	}

	b := behavior.Binding{Behavior: def.Name}
	if len(fields) == 2 {
		u, err := hid.ParseUsage(fields[1])
		if err != nil {
			return behavior.Binding{}, fmt.Errorf("binding %q: %w", text, err)
		}
		b.Param = u
	}

	switch def.Kind {
	case behavior.KindKeyPress:
		if b.Param == hid.UsageNone {
			return behavior.Binding{}, fmt.Errorf("binding %q: key_press needs a key", text)
		}
	case behavior.KindSOCD:
		if !def.Pair.Contains(b.Param) {
			return behavior.Binding{}, fmt.Errorf("binding %q: key must be one of %s", text, def.Pair)
		}
	}
	return b, nil
}

func cueLoadError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
