package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/nullbind/internal/config"
	"github.com/roach88/nullbind/internal/engine"
)

// CLI error codes. Keymap errors keep the K-codes from config.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeEventSyntax = "E010" // Malformed line in an event script
	ErrCodeDatabase    = "E020" // Event log could not be opened or read
)

// LoadError represents a failure to load a CLI input.
type LoadError struct {
	Code    string
	Message string
	Line    int // 1-based line number, 0 if unknown
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// loadKeymap loads a keymap file. A missing file is reported as E005;
// everything else comes back as a *config.LoadError.
func loadKeymap(path string) (*config.Keymap, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("keymap not found: %s", path)}
	}
	if err == nil && info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("keymap is a directory: %s", path)}
	}
	return config.LoadKeymap(path)
}

// errorCode returns the code carried by a load error, or ErrCodeGeneric.
func errorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	var ke *config.LoadError
	if errors.As(err, &ke) {
		return ke.Code
	}
	return ErrCodeGeneric
}

// scanEvents reads an event script and calls fn for each event in order.
//
// One event per line: "press <position>" or "release <position>", with an
// optional trailing timestamp. Blank lines and text after '#' are ignored.
// Scanning stops at the first malformed line or the first error from fn.
func scanEvents(r io.Reader, fn func(engine.Event) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		ev, ok, err := parseEventLine(sc.Text())
		if err != nil {
			return &LoadError{Code: ErrCodeEventSyntax, Message: err.Error(), Line: line}
		}
		if !ok {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return sc.Err()
}

// parseEventLine parses one script line. ok is false for blank and
// comment-only lines.
func parseEventLine(text string) (ev engine.Event, ok bool, err error) {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return engine.Event{}, false, nil
	}
	if len(fields) > 3 {
		return engine.Event{}, false, fmt.Errorf("want \"press|release <position> [timestamp]\", got %q", strings.TrimSpace(text))
	}
	if len(fields) < 2 {
		return engine.Event{}, false, fmt.Errorf("missing position in %q", strings.TrimSpace(text))
	}

	kind, err := engine.ParseEventKind(strings.ToLower(fields[0]))
	if err != nil {
		return engine.Event{}, false, err
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 0 {
		return engine.Event{}, false, fmt.Errorf("invalid position %q", fields[1])
	}

	ev = engine.Event{Kind: kind, Position: pos}
	if len(fields) == 3 {
		ts, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return engine.Event{}, false, fmt.Errorf("invalid timestamp %q", fields[2])
		}
		ev.Timestamp = ts
	}
	return ev, true, nil
}
