// Package harness runs keymap scenarios against the engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: press_a_then_d
//	description: "Pressing D while A is held releases A"
//	keymap: ../keymaps/wasd.cue
//	session: scenario-press-a-then-d
//	flow:
//	  - press: 1
//	    expect: ["press A"]
//	  - press: 3
//	    expect: ["release A", "press D"]
//	assertions:
//	  - type: hid_count
//	    action: release A
//	    origin: ad
//	    count: 1
//	  - type: final_report
//	    keys: [D]
//	  - type: resolver_state
//	    behavior: ad
//	    b_active: true
//
// The keymap path is relative to the scenario file. Each flow step presses
// or releases one key position; expect, when present, is the exact list of
// HID actions that event must issue.
//
// # Assertion Types
//
//   - hid_count: an action was issued exactly N times, optionally only
//     counting one behavior's actions
//   - hid_order: actions were issued in this relative order
//   - final_report: the keys held in the final report, in report order
//   - resolver_state: the flags of a SOCD resolver after the flow
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite event log, a deterministic
// logical clock and a fixed session id, so the same scenario always
// produces the same trace. RunWithGolden compares that trace against
// testdata/scenarios/golden/<name>.golden, where the test command also
// looks for it; regenerate with
//
//	go test ./internal/harness -update
package harness
