package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nullbind/internal/hid"
)

// Scenario is a scripted sequence of key position events and the checks
// run against what the engine did with them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Keymap is the CUE keymap to load. Relative paths are resolved
	// against the scenario file's directory.
	Keymap string `yaml:"keymap"`

	// Session is an optional fixed session id for the event log.
	// Defaults to testutil.DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Flow is the event sequence.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep presses or releases one key position. Exactly one of Press and
// Release is set.
type FlowStep struct {
	Press   *int `yaml:"press,omitempty"`
	Release *int `yaml:"release,omitempty"`

	// Expect is the exact list of actions the event must issue, e.g.
	// ["release A", "press D"]. Nil skips the check; an empty list
	// requires that nothing was issued.
	Expect []string `yaml:"expect,omitempty"`
}

// Position returns the step's key position and whether it is a press.
func (s FlowStep) Position() (pos int, press bool) {
	if s.Press != nil {
		return *s.Press, true
	}
	return *s.Release, false
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of hid_count, hid_order, final_report, resolver_state.
	Type string `yaml:"type"`

	// Action is the action to count, e.g. "release A" (hid_count).
	Action string `yaml:"action,omitempty"`

	// Origin restricts hid_count to actions issued by this behavior.
	Origin string `yaml:"origin,omitempty"`

	// Count is the expected number of occurrences (hid_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected relative order (hid_order).
	Actions []string `yaml:"actions,omitempty"`

	// Keys is the expected final report content (final_report).
	Keys []string `yaml:"keys,omitempty"`

	// Behavior names the resolver to inspect (resolver_state).
	Behavior string `yaml:"behavior,omitempty"`
	AActive  bool   `yaml:"a_active,omitempty"`
	BActive  bool   `yaml:"b_active,omitempty"`
}

// Assertion type constants.
const (
	AssertHIDCount      = "hid_count"
	AssertHIDOrder      = "hid_order"
	AssertFinalReport   = "final_report"
	AssertResolverState = "resolver_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Keymap != "" && !filepath.IsAbs(scenario.Keymap) {
		scenario.Keymap = filepath.Join(filepath.Dir(path), scenario.Keymap)
	}
	if _, err := os.Stat(scenario.Keymap); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: keymap file not found: %s", scenario.Keymap)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
// The keymap path is left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Keymap == "" {
		return fmt.Errorf("keymap is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if (step.Press == nil) == (step.Release == nil) {
			return fmt.Errorf("flow[%d]: exactly one of press or release is required", i)
		}
		if pos, _ := step.Position(); pos < 0 {
			return fmt.Errorf("flow[%d]: position must be non-negative", i)
		}
		for _, a := range step.Expect {
			if _, err := hid.ParseAction(a); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertHIDCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for hid_count", index)
		}
		if _, err := hid.ParseAction(a.Action); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for hid_count", index)
		}
	case AssertHIDOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for hid_order", index)
		}
		for _, s := range a.Actions {
			if _, err := hid.ParseAction(s); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertFinalReport:
		if len(a.Keys) > hid.MaxKeys {
			return fmt.Errorf("assertions[%d]: report holds at most %d keys", index, hid.MaxKeys)
		}
		for _, k := range a.Keys {
			if _, err := hid.ParseUsage(k); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertResolverState:
		if a.Behavior == "" {
			return fmt.Errorf("assertions[%d]: behavior is required for resolver_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
