// Package main implements the sluice daemon (sluiced).
//
// sluiced accepts single-string classification requests over HTTP, batches
// them by length and feeds the batches, one at a time, to a classification
// backend that can only serve one request at once.
package main

import (
	"os"

	"github.com/concave-dev/sluice/cmd/sluiced/commands"
)

func main() {
	commands.SetupCommands()

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
