package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(SessionSummary{ID: "sess-1", Events: 3}))
	require.NoError(t, formatter.Error(ErrCodeNotFound, "session not found: x", map[string]string{"db": "log.db"}))

	dec := json.NewDecoder(buf)

	var ok struct {
		Status string         `json:"status"`
		Data   SessionSummary `json:"data"`
	}
	require.NoError(t, dec.Decode(&ok))
	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, "sess-1", ok.Data.ID)
	assert.Equal(t, 3, ok.Data.Events)

	var fail CLIResponse
	require.NoError(t, dec.Decode(&fail))
	assert.Equal(t, "error", fail.Status)
	require.NotNil(t, fail.Error)
	assert.Equal(t, "E005", fail.Error.Code)
	assert.Equal(t, "session not found: x", fail.Error.Message)
	assert.NotNil(t, fail.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
		absent  []string
	}{
		{
			name:   "quiet",
			want:   []string{"3 sessions", "Error [E020]: database is locked"},
			absent: []string{"Details:"},
		},
		{
			name:    "verbose shows details",
			verbose: true,
			want:    []string{"Error [E020]", "Details: log.db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Success("3 sessions"))
			require.NoError(t, formatter.Error(ErrCodeDatabase, "database is locked", "log.db"))

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, buf.String(), a)
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("running %s", "press_a.yaml")
	assert.Empty(t, out.String(), "verbose output never lands on stdout")
	assert.Equal(t, "running press_a.yaml\n", errOut.String())

	quiet := &OutputFormatter{Format: "text", Writer: out}
	quiet.VerboseLog("hidden")
	assert.Empty(t, out.String())
	assert.Same(t, out, quiet.GetErrWriter())
}

func TestOutputFormatter_VerboseLogFallsBackToWriter(t *testing.T) {
	out := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, Verbose: true}

	formatter.VerboseLog("keymap hash: %s", "abc")
	assert.Equal(t, "keymap hash: abc\n", out.String())
}

func TestOutputFormatter_JSONIndented(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.JSON(CLIResponse{Status: "ok", SessionID: "s-1"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "\n  \"status\": \"ok\"")
	assert.Contains(t, buf.String(), "\"session_id\": \"s-1\"")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open database", cause)

	assert.Equal(t, "failed to open database: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no db", NewExitError(ExitFailure, "no db").Error())
}
