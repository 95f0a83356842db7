// Command fsctl is a reference controller for a host process driven
// under the preload module: it builds the environment a driven host
// expects (spec.md §6), launches it, and exchanges single-byte
// commands and framed replies with its fork server over stdin/stdout.
package main

import (
	"fmt"
	"os"

	"forkserver-go/cmd/fsctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
