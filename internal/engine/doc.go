// Package engine dispatches key position events to keymap behaviors.
//
// The engine is the host-side stand-in for a firmware's behavior dispatch
// bus: it receives press and release events for key positions, walks each
// position's binding chain, and records the HID instructions the behaviors
// issue.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every event is processed in one goroutine, to completion, in the order it
// was enqueued. Behaviors therefore never see concurrent calls and keep
// their state without locks.
//
// Event Processing Flow:
// 1. Events enqueued to FIFO queue (or passed straight to Process)
// 2. Engine.Run() dequeues events one at a time
// 3. The position's bindings are invoked in order
// 4. A Handled result stops the chain; PassThrough continues it
// 5. Releases reach the keyboard as they are issued; presses are applied
//    once the chain ends, so a resolver's release precedes the new press
// 6. The HID instructions issued along the way form the event's Outcome,
//    which is handed to the Recorder (event log) and the Observer. Each
//    carries whether it changed the report
//
// Logical Clock:
// Events are stamped with a monotonic seq from Clock.Next(), never with wall
// time, so a replay of the log reproduces the same sequence numbers.
package engine
