package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content and a two-key resolver keymap, km.cue, to a
// temp dir and returns the scenario path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "km.cue"), []byte(`
behaviors: ad: {kind: "socd", pair: ["A", "D"]}
keymap: [["ad A"], ["ad D"]]
`), 0644))
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
keymap: km.cue
session: s-1
flow:
  - press: 0
  - release: 0
    expect: []
assertions:
  - type: resolver_state
    behavior: ad
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "km.cue"), scenario.Keymap)
	assert.Equal(t, "s-1", scenario.Session)
	require.Len(t, scenario.Flow, 2)

	pos, press := scenario.Flow[0].Position()
	assert.Equal(t, 0, pos)
	assert.True(t, press)
	assert.Nil(t, scenario.Flow[0].Expect)

	_, press = scenario.Flow[1].Position()
	assert.False(t, press)
	assert.NotNil(t, scenario.Flow[1].Expect, "an empty expect list still checks")
	assert.Empty(t, scenario.Flow[1].Expect)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_MissingKeymap(t *testing.T) {
	path := writeScenario(t, `
name: x
description: x
keymap: other.cue
flow: [{press: 0}]
assertions: [{type: final_report}]
`)

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "keymap file not found")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
description: x
keymap: km.cue
flow: [{press: 0}]
assertion: [{type: final_report}]
`))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `{description: x, keymap: k, flow: [{press: 0}], assertions: [{type: final_report}]}`,
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: `{name: x, keymap: k, flow: [{press: 0}], assertions: [{type: final_report}]}`,
			want: "description is required",
		},
		{
			name: "missing keymap",
			yaml: `{name: x, description: x, flow: [{press: 0}], assertions: [{type: final_report}]}`,
			want: "keymap is required",
		},
		{
			name: "empty flow",
			yaml: `{name: x, description: x, keymap: k, flow: [], assertions: [{type: final_report}]}`,
			want: "flow list is required",
		},
		{
			name: "no assertions",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}]}`,
			want: "assertions list is required",
		},
		{
			name: "press and release",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0, release: 0}], assertions: [{type: final_report}]}`,
			want: "flow[0]: exactly one of press or release",
		},
		{
			name: "neither press nor release",
			yaml: `{name: x, description: x, keymap: k, flow: [{expect: []}], assertions: [{type: final_report}]}`,
			want: "flow[0]: exactly one of press or release",
		},
		{
			name: "negative position",
			yaml: `{name: x, description: x, keymap: k, flow: [{release: -1}], assertions: [{type: final_report}]}`,
			want: "position must be non-negative",
		},
		{
			name: "bad expect",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0, expect: [tap A]}], assertions: [{type: final_report}]}`,
			want: "flow[0].expect",
		},
		{
			name: "unknown assertion",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{type: trace_contains}]}`,
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "assertion without type",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{count: 1}]}`,
			want: "assertions[0]: type is required",
		},
		{
			name: "hid_count without action",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{type: hid_count, count: 1}]}`,
			want: "action is required for hid_count",
		},
		{
			name: "hid_count negative",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{type: hid_count, action: press A, count: -1}]}`,
			want: "count must be non-negative",
		},
		{
			name: "hid_order empty",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{type: hid_order}]}`,
			want: "actions list is required for hid_order",
		},
		{
			name: "final_report bad key",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{type: final_report, keys: [NOPE]}]}`,
			want: "assertions[0]",
		},
		{
			name: "resolver_state without behavior",
			yaml: `{name: x, description: x, keymap: k, flow: [{press: 0}], assertions: [{type: resolver_state}]}`,
			want: "behavior is required for resolver_state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
