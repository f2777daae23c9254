// Package store provides SQLite-backed storage for nullbind event logs.
//
// The log is append-only:
//   - Sessions: one per engine run, with the keymap name and hash
//   - Events: press/release events in processing order
//   - HID actions: press/release instructions issued while handling an event
//
// # Ordering
//
// Events are keyed by (session_id, seq) where seq comes from the engine's
// logical clock. Actions are keyed by (session_id, event_seq, idx). Every
// read orders by those keys, never by wall time, so replays compare
// sequences directly.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
