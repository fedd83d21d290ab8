// Package main is the cogsync command-line tool: batch and single-person
// recomputes, sample data seeding and a Langfuse connectivity check.
package main

import (
	"fmt"
	"os"

	"github.com/blaisecz/cognitive-sync/cmd/cogsync/commands"
)

func main() {
	if err := commands.NewRootCommand(commands.OpenApp).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
