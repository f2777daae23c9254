package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/nullbind/internal/behavior"
	"github.com/roach88/nullbind/internal/config"
	"github.com/roach88/nullbind/internal/hid"
	"github.com/roach88/nullbind/internal/store"
)

// Recorder persists processed events. *store.Store implements it.
type Recorder interface {
	WriteSession(ctx context.Context, sess store.Session) error
	WriteEvent(ctx context.Context, ev store.Event) error
}

// Outcome is the result of processing one event.
type Outcome struct {
	Seq       int64
	Event     Event
	HandledBy string       // behavior that returned Handled, empty if none did
	Actions   []hid.Action // HID instructions in the order they were issued
}

// Observer is called after each event is processed, from the Run goroutine.
type Observer func(Outcome)

// Engine is the single-writer behavior dispatcher.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run() and Process(): must be called from exactly one goroutine
//   - Keyboard(): the keyboard itself is safe for concurrent reads
type Engine struct {
	keymap   *config.Keymap
	keyboard *hid.Keyboard
	registry *behavior.Registry
	out      *tracingOutput
	queue    *eventQueue

	clock    SeqClock
	sessions SessionGenerator
	session  string
	recorder Recorder
	observer Observer
	logger   *slog.Logger

	sessionWritten bool
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock replaces the default logical clock.
func WithClock(c SeqClock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSessionGenerator replaces the default UUIDv7 session generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) {
		e.sessions = g
	}
}

// WithRecorder logs every processed event to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithObserver registers a callback run after each event.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithLogger sets the logger for the engine and the behaviors it builds.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New builds the keymap's behaviors against kb and returns an engine ready
// to process events.
func New(km *config.Keymap, kb *hid.Keyboard, opts ...Option) (*Engine, error) {
	if km == nil {
		return nil, fmt.Errorf("new engine: nil keymap")
	}
	if kb == nil {
		return nil, fmt.Errorf("new engine: nil keyboard")
	}

	e := &Engine{
		keymap:   km,
		keyboard: kb,
		out:      newTracingOutput(kb),
		queue:    newEventQueue(),
		clock:    NewClock(),
		sessions: UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	reg, err := behavior.Build(km.Behaviors, e.out, e.logger)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	e.registry = reg
	e.session = e.sessions.Generate()

	return e, nil
}

// Session returns the session id stamped on recorded events.
func (e *Engine) Session() string { return e.session }

// Keyboard returns the HID keyboard the behaviors write to.
func (e *Engine) Keyboard() *hid.Keyboard { return e.keyboard }

// Keymap returns the keymap the engine was built from.
func (e *Engine) Keymap() *config.Keymap { return e.keymap }

// Resolver returns the SOCD resolver named name, for state inspection.
func (e *Engine) Resolver(name string) (*behavior.Resolver, bool) {
	return e.registry.Resolver(name)
}

// QueueLen returns the number of events waiting for Run.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called and the queue drains.
//
// On event processing failure the error is logged with the event context
// and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "session", e.session, "keymap", e.keymap.Name)

	for {
		if ev, ok := e.queue.TryDequeue(); ok {
			if _, err := e.Process(ctx, ev); err != nil {
				e.logEventError(ev, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so a closed and
			// drained queue ends the loop.
			if e.queue.Len() == 0 && e.stopped() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the event queue. Run returns once queued events are processed.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) stopped() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// Process dispatches one event synchronously and returns its outcome.
// CRITICAL: must not be called concurrently with itself or with Run.
//
// The bindings of the event's position are invoked in order until one
// returns Handled. Presses issued along the chain are applied after it,
// in issue order. Events for positions outside the keymap are rejected
// without consuming a sequence number.
func (e *Engine) Process(ctx context.Context, ev Event) (Outcome, error) {
	if ev.Kind != EventPress && ev.Kind != EventRelease {
		return Outcome{}, &RuntimeError{
			Code:     ErrCodeInvalidEvent,
			Message:  fmt.Sprintf("event kind %d", int(ev.Kind)),
			Position: ev.Position,
		}
	}
	if ev.Position < 0 || ev.Position >= len(e.keymap.Positions) {
		return Outcome{}, &RuntimeError{
			Code:     ErrCodeUnknownPosition,
			Message:  fmt.Sprintf("keymap has %d positions", len(e.keymap.Positions)),
			Position: ev.Position,
		}
	}

	out := Outcome{Seq: e.clock.Next(), Event: ev}
	bev := behavior.Event{Position: ev.Position, Timestamp: ev.Timestamp}

	for _, binding := range e.keymap.Positions[ev.Position] {
		b, ok := e.registry.Lookup(binding.Behavior)
		if !ok {
			out.Actions = e.out.take()
			return out, &RuntimeError{
				Code:     ErrCodeUnknownBehavior,
				Message:  "binding refers to a behavior that was not built",
				Position: ev.Position,
				Behavior: binding.Behavior,
			}
		}

		e.out.origin = binding.Behavior
		var res behavior.Result
		if ev.Kind == EventPress {
			res = b.OnPressed(binding, bev)
		} else {
			res = b.OnReleased(binding, bev)
		}

		if res == behavior.Handled {
			out.HandledBy = binding.Behavior
			break
		}
	}
	out.Actions = e.out.take()

	if out.HandledBy == "" {
		e.logger.Debug("event passed through every binding",
			"seq", out.Seq,
			"kind", ev.Kind.String(),
			"position", ev.Position,
		)
	}
	e.logger.Debug("event processed",
		"seq", out.Seq,
		"kind", ev.Kind.String(),
		"position", ev.Position,
		"handled_by", out.HandledBy,
		"actions", len(out.Actions),
	)

	if e.recorder != nil {
		if err := e.record(ctx, out); err != nil {
			return out, err
		}
	}
	if e.observer != nil {
		e.observer(out)
	}

	return out, nil
}

func (e *Engine) record(ctx context.Context, out Outcome) error {
	if !e.sessionWritten {
		err := e.recorder.WriteSession(ctx, store.Session{
			ID:         e.session,
			KeymapName: e.keymap.Name,
			KeymapHash: e.keymap.Hash,
		})
		if err != nil {
			return fmt.Errorf("record session %s: %w", e.session, err)
		}
		e.sessionWritten = true
	}

	rec := store.Event{
		SessionID: e.session,
		Seq:       out.Seq,
		Kind:      out.Event.Kind.String(),
		Position:  out.Event.Position,
		Timestamp: out.Event.Timestamp,
		HandledBy: out.HandledBy,
	}
	for _, a := range out.Actions {
		rec.Actions = append(rec.Actions, store.Action{
			Kind:    a.Kind.String(),
			Usage:   a.Usage,
			Origin:  a.Origin,
			Applied: a.Applied,
		})
	}

	if err := e.recorder.WriteEvent(ctx, rec); err != nil {
		return fmt.Errorf("record event %d: %w", out.Seq, err)
	}
	return nil
}

// logEventError logs an event processing failure with full context.
func (e *Engine) logEventError(ev Event, err error) {
	e.logger.Error("event processing failed",
		"error", err,
		"session", e.session,
		"kind", ev.Kind.String(),
		"position", ev.Position,
		"timestamp", ev.Timestamp,
	)
}
