package hid

import (
	"fmt"
	"strings"
)

// ActionKind distinguishes report changes.
type ActionKind int

const (
	// ActionPress adds a usage to the report.
	ActionPress ActionKind = iota + 1
	// ActionRelease removes a usage from the report.
	ActionRelease
)

// String returns "press" or "release".
func (k ActionKind) String() string {
	switch k {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is one press or release instruction issued to the keyboard.
// Origin names the behavior instance that issued it. Applied is false when
// the instruction left the report unchanged: the key was already in the
// requested state, or all six slots were taken.
type Action struct {
	Kind    ActionKind
	Usage   Usage
	Origin  string
	Applied bool
}

// String renders the action as "<kind> <key>", e.g. "release D".
func (a Action) String() string {
	return a.Kind.String() + " " + a.Usage.String()
}

// ParseAction parses the "<kind> <key>" form produced by Action.String.
// Origin and Applied are left unset.
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Action{}, fmt.Errorf("action %q: want \"<press|release> <key>\"", s)
	}

	var kind ActionKind
	switch strings.ToLower(fields[0]) {
	case "press":
		kind = ActionPress
	case "release":
		kind = ActionRelease
	default:
		return Action{}, fmt.Errorf("action %q: unknown kind %q", s, fields[0])
	}

	u, err := ParseUsage(fields[1])
	if err != nil {
		return Action{}, fmt.Errorf("action %q: %w", s, err)
	}
	return Action{Kind: kind, Usage: u}, nil
}
