// Package main provides the matbench CLI.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/matbench/internal/workload"
)

const version = "v0.1.0-dev"

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2 // malformed workload
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "matbench:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if workload.IsInvalid(err) {
		return exitUsage
	}
	return exitFailure
}
