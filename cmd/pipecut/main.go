// Command pipecut partitions captured instruction programs into
// pipeline stages.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pipecut/pipecut/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Command failures print their own diagnostics through the
	// formatter. Anything else, such as flag parse errors, has been
	// silenced by cobra and surfaces only here.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
