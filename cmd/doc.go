// Package cmd implements the command-line interface for xo-assistance.
//
// This package provides the following commands:
//   - serve: Start the calendar assistant bot and change watcher
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
