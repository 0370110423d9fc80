// Command logos resolves, invokes and composes LOGOS handles.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/logos/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
