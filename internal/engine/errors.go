package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an event the engine could not dispatch.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Position is the key position of the event.
	Position int

	// Behavior names the binding's behavior (for UNKNOWN_BEHAVIOR).
	Behavior string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownPosition indicates the event's position is not in the keymap.
	ErrCodeUnknownPosition RuntimeErrorCode = "UNKNOWN_POSITION"

	// ErrCodeUnknownBehavior indicates a binding names a behavior that was never built.
	ErrCodeUnknownBehavior RuntimeErrorCode = "UNKNOWN_BEHAVIOR"

	// ErrCodeInvalidEvent indicates the event kind is neither press nor release.
	ErrCodeInvalidEvent RuntimeErrorCode = "INVALID_EVENT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Behavior != "" {
		return fmt.Sprintf("%s: %s (position=%d, behavior=%s)", e.Code, e.Message, e.Position, e.Behavior)
	}
	return fmt.Sprintf("%s: %s (position=%d)", e.Code, e.Message, e.Position)
}

// IsUnknownPosition returns true if err is an unknown position error.
// Uses errors.As to handle wrapped errors.
func IsUnknownPosition(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownPosition
	}
	return false
}

// IsUnknownBehavior returns true if err is an unknown behavior error.
func IsUnknownBehavior(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownBehavior
	}
	return false
}

// IsInvalidEvent returns true if err is an invalid event error.
func IsInvalidEvent(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidEvent
	}
	return false
}
