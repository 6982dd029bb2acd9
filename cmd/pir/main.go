package main

import (
	"fmt"
	"os"

	"github.com/roach88/pir/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Commands print their own diagnostics; this catches usage errors
		// and carries command exit codes through.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
