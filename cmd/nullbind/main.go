// Command nullbind runs SOCD keymaps, scenario tests and event log replays.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/nullbind/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
