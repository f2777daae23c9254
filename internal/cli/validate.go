package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nullbind/internal/behavior"
	"github.com/roach88/nullbind/internal/config"
)

// BehaviorInfo describes one behavior definition.
type BehaviorInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Pair string `json:"pair,omitempty"` // "A/D" for socd
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool           `json:"valid"`
	Keymap    string         `json:"keymap"`
	Hash      string         `json:"hash"`
	Behaviors []BehaviorInfo `json:"behaviors"`
	Positions int            `json:"positions"`
}

// ValidationDetails locates a keymap error.
type ValidationDetails struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <keymap.cue>",
		Short: "Validate a keymap",
		Long: `Validate a CUE keymap without running it.

Checks CUE syntax, the keymap schema, every behavior definition and every
binding. SOCD pairs must name two different keys and each socd binding must
name one of its pair.

Exit codes:
  0 - Keymap is valid
  1 - Keymap is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	km, err := loadKeymap(path)
	if err != nil {
		return outputValidateError(formatter, err)
	}

	result := ValidationResult{
		Valid:     true,
		Keymap:    km.Name,
		Hash:      km.Hash,
		Behaviors: make([]BehaviorInfo, 0, len(km.Behaviors)),
		Positions: len(km.Positions),
	}
	for _, def := range km.Behaviors {
		info := BehaviorInfo{Name: def.Name, Kind: string(def.Kind)}
		if def.Kind == behavior.KindSOCD {
			info.Pair = def.Pair.String()
		}
		result.Behaviors = append(result.Behaviors, info)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s: %d behavior(s), %d position(s)\n", km.Name, len(result.Behaviors), result.Positions)
	for _, b := range result.Behaviors {
		if b.Pair != "" {
			formatter.VerboseLog("  %s: %s %s", b.Name, b.Kind, b.Pair)
		} else {
			formatter.VerboseLog("  %s: %s", b.Name, b.Kind)
		}
	}
	for i, chain := range km.Positions {
		parts := make([]string, len(chain))
		for j, b := range chain {
			parts[j] = b.String()
		}
		formatter.VerboseLog("  [%d] %s", i, strings.Join(parts, " -> "))
	}
	return nil
}

// outputValidateError reports a load failure and returns the matching
// exit error: 2 when the file is missing, 1 when it is invalid.
func outputValidateError(formatter *OutputFormatter, err error) error {
	code := errorCode(err)

	var details *ValidationDetails
	message := err.Error()
	var ke *config.LoadError
	if errors.As(err, &ke) {
		message = ke.Message
		if ke.Pos.IsValid() {
			details = &ValidationDetails{
				File:   ke.Pos.Filename(),
				Line:   ke.Pos.Line(),
				Column: ke.Pos.Column(),
			}
		}
	}
	var le *LoadError
	if errors.As(err, &le) {
		message = le.Message
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "error", Error: &CLIError{Code: code, Message: message}}
		if details != nil {
			resp.Error.Details = details
		}
		if jerr := formatter.JSON(resp); jerr != nil {
			return jerr
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Error [%s]: %s\n", code, message)
		if details != nil {
			fmt.Fprintf(formatter.Writer, "  at %s:%d:%d\n", details.File, details.Line, details.Column)
		}
	}

	if code == ErrCodeNotFound || code == config.ErrCodeRead {
		return WrapExitError(ExitCommandError, "keymap could not be read", err)
	}
	return WrapExitError(ExitFailure, "keymap is invalid", err)
}
