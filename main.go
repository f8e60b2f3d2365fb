// Package main provides the entry point for the Scrooge cloud cost optimizer.
//
// Scrooge is a CLI tool that turns a plain-text project description into cost
// optimization recommendations. A language model extracts a project profile,
// generates a synthetic month of cloud billing records against the project
// budget, and proposes savings; all aggregate numbers are recomputed locally
// and reported in Indian Rupees.
//
// Usage:
//
//	scrooge analyze project.txt [flags]
//	scrooge profile project.txt
//	scrooge billing
//	scrooge recommend
//	scrooge validate billing.json
//	scrooge export --format pdf
//	scrooge menu
//
// For detailed usage information, run: scrooge --help
package main

import (
	"fmt"
	"os"

	"scrooge/cmd"
	"scrooge/internal/errors"
)

// main is the entry point for the Scrooge application.
// It executes the CLI commands and handles error formatting and exit codes.
func main() {
	if err := cmd.Execute(); err != nil {
		// Format error for user display using structured error handling
		if pipelineErr, ok := err.(*errors.PipelineError); ok {
			fmt.Fprint(os.Stderr, errors.FormatErrorForUser(pipelineErr))
			os.Exit(errors.GetExitCode(pipelineErr))
		} else {
			// Handle unexpected errors
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
