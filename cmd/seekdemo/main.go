// Command seekdemo runs the same varchar equality filter through a wide
// and a narrow text mapping and logs the statements each one produces.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/seekdemo/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
