// Package main provides the trailmind CLI.
//
// Usage:
//
//	trailmind [flags] <command> [args]
//
// Commands:
//
//	chat     - Interactive travel planning conversation
//	voice    - Voice conversation over the realtime API
//	trips    - Manage saved trips
//	config   - Configuration management
//
// Configuration is stored in ~/.trailmind/ and supports multiple
// contexts; use 'trailmind config' commands to manage them.
package main

import (
	"fmt"
	"os"

	"github.com/trailmind/trailmind/cmd/trailmind/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
