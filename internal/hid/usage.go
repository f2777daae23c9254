package hid

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Usage is a usage ID on the HID Keyboard/Keypad page (0x07).
type Usage uint16

// Keyboard/Keypad page usages.
const (
	UsageNone Usage = 0x00

	KeyA Usage = 0x04
	KeyB Usage = 0x05
	KeyC Usage = 0x06
	KeyD Usage = 0x07
	KeyE Usage = 0x08
	KeyF Usage = 0x09
	KeyG Usage = 0x0A
	KeyH Usage = 0x0B
	KeyI Usage = 0x0C
	KeyJ Usage = 0x0D
	KeyK Usage = 0x0E
	KeyL Usage = 0x0F
	KeyM Usage = 0x10
	KeyN Usage = 0x11
	KeyO Usage = 0x12
	KeyP Usage = 0x13
	KeyQ Usage = 0x14
	KeyR Usage = 0x15
	KeyS Usage = 0x16
	KeyT Usage = 0x17
	KeyU Usage = 0x18
	KeyV Usage = 0x19
	KeyW Usage = 0x1A
	KeyX Usage = 0x1B
	KeyY Usage = 0x1C
	KeyZ Usage = 0x1D

	Key1 Usage = 0x1E
	Key2 Usage = 0x1F
	Key3 Usage = 0x20
	Key4 Usage = 0x21
	Key5 Usage = 0x22
	Key6 Usage = 0x23
	Key7 Usage = 0x24
	Key8 Usage = 0x25
	Key9 Usage = 0x26
	Key0 Usage = 0x27

	KeyEnter     Usage = 0x28
	KeyEscape    Usage = 0x29
	KeyBackspace Usage = 0x2A
	KeyTab       Usage = 0x2B
	KeySpace     Usage = 0x2C

	KeyRight Usage = 0x4F
	KeyLeft  Usage = 0x50
	KeyDown  Usage = 0x51
	KeyUp    Usage = 0x52

	KeyLeftCtrl   Usage = 0xE0
	KeyLeftShift  Usage = 0xE1
	KeyLeftAlt    Usage = 0xE2
	KeyLeftGUI    Usage = 0xE3
	KeyRightCtrl  Usage = 0xE4
	KeyRightShift Usage = 0xE5
	KeyRightAlt   Usage = 0xE6
	KeyRightGUI   Usage = 0xE7
)

// canonicalNames maps usages to the name String() prints.
var canonicalNames = map[Usage]string{
	KeyEnter:      "ENTER",
	KeyEscape:     "ESCAPE",
	KeyBackspace:  "BACKSPACE",
	KeyTab:        "TAB",
	KeySpace:      "SPACE",
	KeyRight:      "RIGHT",
	KeyLeft:       "LEFT",
	KeyDown:       "DOWN",
	KeyUp:         "UP",
	KeyLeftCtrl:   "LCTRL",
	KeyLeftShift:  "LSHIFT",
	KeyLeftAlt:    "LALT",
	KeyLeftGUI:    "LGUI",
	KeyRightCtrl:  "RCTRL",
	KeyRightShift: "RSHIFT",
	KeyRightAlt:   "RALT",
	KeyRightGUI:   "RGUI",
}

// aliases are extra accepted spellings; keys are already upper case.
var aliases = map[string]Usage{
	"RET":         KeyEnter,
	"RETURN":      KeyEnter,
	"ESC":         KeyEscape,
	"BSPC":        KeyBackspace,
	"SPC":         KeySpace,
	"RIGHT_ARROW": KeyRight,
	"LEFT_ARROW":  KeyLeft,
	"DOWN_ARROW":  KeyDown,
	"UP_ARROW":    KeyUp,
	"LCMD":        KeyLeftGUI,
	"RCMD":        KeyRightGUI,
}

var byName map[string]Usage

func init() {
	for u := KeyA; u <= KeyZ; u++ {
		canonicalNames[u] = string(rune('A' + int(u-KeyA)))
	}
	for u := Key1; u <= Key9; u++ {
		canonicalNames[u] = "N" + strconv.Itoa(int(u-Key1)+1)
	}
	canonicalNames[Key0] = "N0"

	byName = make(map[string]Usage, len(canonicalNames)+len(aliases))
	for u, name := range canonicalNames {
		byName[name] = u
	}
	for name, u := range aliases {
		byName[name] = u
	}
}

// cases.Caser is not safe for concurrent use, so each call builds its own.
func normalizeName(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}

// ParseUsage resolves a key name ("a", "D", "left", "N1") or a hex literal
// ("0x04") to a usage. Names are matched case-insensitively.
func ParseUsage(name string) (Usage, error) {
	norm := normalizeName(name)
	if norm == "" {
		return UsageNone, fmt.Errorf("empty key name")
	}
	if u, ok := byName[norm]; ok {
		return u, nil
	}
	if strings.HasPrefix(norm, "0X") {
		v, err := strconv.ParseUint(norm[2:], 16, 16)
		if err != nil {
			return UsageNone, fmt.Errorf("invalid usage literal %q: %w", name, err)
		}
		if v == 0 || v > 0xFF {
			return UsageNone, fmt.Errorf("usage literal %q out of range", name)
		}
		return Usage(v), nil
	}
	return UsageNone, fmt.Errorf("unknown key name %q", name)
}

// String returns the canonical key name, or a hex literal for unnamed usages.
func (u Usage) String() string {
	if name, ok := canonicalNames[u]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint16(u))
}

// IsModifier reports whether u is one of the eight modifier usages.
func (u Usage) IsModifier() bool {
	return u >= KeyLeftCtrl && u <= KeyRightGUI
}
