package store

import (
	"errors"

	"github.com/roach88/nullbind/internal/hid"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = errors.New("not found")

// Event kinds as stored in the kind column.
const (
	KindPress   = "press"
	KindRelease = "release"
)

// Session identifies one engine run.
type Session struct {
	ID         string
	KeymapName string
	KeymapHash string
}

// Event is one processed press or release.
type Event struct {
	SessionID string
	Seq       int64
	Kind      string // KindPress or KindRelease
	Position  int
	Timestamp int64
	HandledBy string // behavior that returned Handled, empty if none did
	Actions   []Action
}

// Action is one HID instruction issued while handling an event.
type Action struct {
	Kind    string // KindPress or KindRelease
	Usage   hid.Usage
	Origin  string
	Applied bool // false if the report was already in the requested state
}
