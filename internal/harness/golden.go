package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures everything a golden file pins down about a run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Session      string       `json:"session,omitempty"`
	Trace        []TraceEvent `json:"trace"`
	FinalKeys    []string     `json:"final_keys"`
}

// MarshalSnapshot renders a run as indented JSON. Field order comes from
// the struct definitions, so output is stable.
func MarshalSnapshot(name, session string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		Session:      session,
		Trace:        result.Trace,
		FinalKeys:    make([]string, 0, len(result.Pressed)),
	}
	for _, u := range result.Pressed {
		snap.FinalKeys = append(snap.FinalKeys, u.String())
	}
	return json.MarshalIndent(snap, "", "  ")
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/scenarios/golden/{scenario.Name}.golden, the same file the
// test command reads for testdata/scenarios/{scenario.Name}.yaml.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. A trace mismatch fails t
// through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := assertGolden(t, scenario.Name, scenario.Session, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()
	return assertGolden(t, scenarioName, "", result)
}

func assertGolden(t *testing.T, name, session string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, session, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/scenarios/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
