// Command filament runs the bundled showcase demos against an in-memory
// document and prints the resulting markup.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/filament/cmd/filament/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
