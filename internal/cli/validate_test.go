package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidKeymap(t *testing.T) {
	keymap := writeWASD(t, t.TempDir())

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), keymap)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ")
	assert.Contains(t, out, "3 behavior(s), 5 position(s)")
}

func TestValidate_ValidKeymapJSON(t *testing.T) {
	keymap := writeWASD(t, t.TempDir())

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), keymap)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 5, resp.Data.Positions)
	assert.Len(t, resp.Data.Hash, 64)
	assert.Equal(t, []BehaviorInfo{
		{Name: "ad", Kind: "socd", Pair: "A/D"},
		{Name: "kp", Kind: "key_press"},
		{Name: "ws", Kind: "socd", Pair: "W/S"},
	}, resp.Data.Behaviors)
}

func TestValidate_Verbose(t *testing.T) {
	keymap := writeWASD(t, t.TempDir())

	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{keymap})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "ad: socd A/D")
	assert.Contains(t, stderr.String(), "[1] kp A -> ad A")
}

func TestValidate_InvalidKeymaps(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			name: "cue syntax",
			src:  "behaviors: {\n",
			code: "K002",
		},
		{
			name: "schema",
			src:  "behaviors: kp: {kind: \"macro\"}\nkeymap: [[\"kp A\"]]\n",
			code: "K003",
		},
		{
			name: "identical pair",
			src:  "behaviors: ad: {kind: \"socd\", pair: [\"A\", \"A\"]}\nkeymap: [[\"ad A\"]]\n",
			code: "K004",
		},
		{
			name: "undefined behavior",
			src:  "behaviors: kp: {kind: \"key_press\"}\nkeymap: [[\"mo 1\"]]\n",
			code: "K005",
		},
		{
			name: "socd key outside pair",
			src:  "behaviors: ad: {kind: \"socd\", pair: [\"A\", \"D\"]}\nkeymap: [[\"ad W\"]]\n",
			code: "K005",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.cue", tt.src)

			out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗ Error ["+tt.code+"]")
		})
	}
}

func TestValidate_ErrorJSON(t *testing.T) {
	src := "behaviors: ad: {kind: \"socd\", pair: [\"A\", \"D\"]}\nkeymap: [[\"ad W\"]]\n"
	path := writeFile(t, t.TempDir(), "bad.cue", src)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "K005", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "key must be one of A/D")
}

func TestValidate_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.cue")

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestValidate_Directory(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "keymap is a directory")
}
