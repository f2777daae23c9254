package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/nullbind/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Env is read once in the root pre-run. Flags take precedence.
	Env config.Env

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the nullbind CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "nullbind",
		Short: "nullbind - SOCD keymap engine",
		Long: `Run keymaps whose opposing keys resolve last-pressed-wins.

A SOCD pair (simultaneous opposing cardinal directions) holds two keys that
must never be reported together. Pressing one releases the other.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			env, err := config.ParseEnv()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			opts.Env = env
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// Logger returns the process logger, writing to the command's stderr.
// --verbose forces debug level over NULLBIND_LOG_LEVEL.
func (o *RootOptions) Logger(cmd *cobra.Command) *slog.Logger {
	if o.logger != nil {
		return o.logger
	}

	level := o.Env.LogLevel
	if o.Verbose {
		level = "debug"
	}
	logger, err := config.NewLogger(config.LogOptions{
		Level:  level,
		Format: o.Env.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		// Env was validated in the pre-run; this is a direct subcommand call.
		logger = slog.Default()
	}
	o.logger = logger
	return logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
