package hid

import (
	"fmt"
	"strings"
	"sync"
)

// MaxKeys is the number of non-modifier key slots in a boot keyboard report.
const MaxKeys = 6

// Report is an 8-byte boot protocol keyboard input report:
// modifier bitmap, reserved byte, six key slots.
type Report [8]byte

// Modifiers returns the modifier bitmap.
func (r Report) Modifiers() byte {
	return r[0]
}

// Keys returns the non-zero key slots in order.
func (r Report) Keys() []Usage {
	keys := make([]Usage, 0, MaxKeys)
	for _, b := range r[2:] {
		if b != 0 {
			keys = append(keys, Usage(b))
		}
	}
	return keys
}

// String renders the report as hex bytes.
func (r Report) String() string {
	var sb strings.Builder
	for i, b := range r {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

// Keyboard holds the state of the keyboard report the host will see.
//
// Press and Release change the report and say whether anything changed.
// Keyboard is safe for concurrent use; behaviors call it from the engine
// goroutine while other goroutines may read snapshots.
type Keyboard struct {
	mu        sync.Mutex
	modifiers byte
	keys      []Usage // press order, at most MaxKeys
}

// NewKeyboard returns an empty keyboard report.
func NewKeyboard() *Keyboard {
	return &Keyboard{keys: make([]Usage, 0, MaxKeys)}
}

// Press adds u to the report. It returns false when u is already present,
// when all six key slots are in use, or when u does not fit in a report byte.
func (k *Keyboard) Press(u Usage) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if u.IsModifier() {
		bit := byte(1) << (u - KeyLeftCtrl)
		if k.modifiers&bit != 0 {
			return false
		}
		k.modifiers |= bit
		return true
	}
	if u == UsageNone || u > 0xFF {
		return false
	}
	if k.indexOf(u) >= 0 || len(k.keys) >= MaxKeys {
		return false
	}
	k.keys = append(k.keys, u)
	return true
}

// Release removes u from the report. It returns false when u was not present.
func (k *Keyboard) Release(u Usage) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if u.IsModifier() {
		bit := byte(1) << (u - KeyLeftCtrl)
		if k.modifiers&bit == 0 {
			return false
		}
		k.modifiers &^= bit
		return true
	}
	i := k.indexOf(u)
	if i < 0 {
		return false
	}
	k.keys = append(k.keys[:i], k.keys[i+1:]...)
	return true
}

// IsPressed reports whether u is currently in the report.
func (k *Keyboard) IsPressed(u Usage) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if u.IsModifier() {
		return k.modifiers&(byte(1)<<(u-KeyLeftCtrl)) != 0
	}
	return k.indexOf(u) >= 0
}

// Pressed returns every usage in the report: modifiers first (LCTRL..RGUI),
// then keys in press order.
func (k *Keyboard) Pressed() []Usage {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]Usage, 0, 8+len(k.keys))
	for i := 0; i < 8; i++ {
		if k.modifiers&(1<<i) != 0 {
			out = append(out, KeyLeftCtrl+Usage(i))
		}
	}
	return append(out, k.keys...)
}

// Report returns a snapshot of the current report bytes.
func (k *Keyboard) Report() Report {
	k.mu.Lock()
	defer k.mu.Unlock()

	var r Report
	r[0] = k.modifiers
	for i, u := range k.keys {
		r[2+i] = byte(u)
	}
	return r
}

// Reset clears every key and modifier.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.modifiers = 0
	k.keys = k.keys[:0]
}

// indexOf must be called with mu held.
func (k *Keyboard) indexOf(u Usage) int {
	for i, v := range k.keys {
		if v == u {
			return i
		}
	}
	return -1
}
