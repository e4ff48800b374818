// Package main is the entry point for the lyrebird studio CLI.
//
// Usage:
//
//	lyrebird [flags] <command> [args]
//
// Commands:
//
//	serve      - Run the studio HTTP API server
//	voices     - List the local voice profiles
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/lyrebird-studio/lyrebird/cmd/lyrebird/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
