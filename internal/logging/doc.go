// Package logging provides slog helpers with consistent attribute naming
// across the assistant. All output goes to stderr as JSON so stdout stays
// free for CLI output.
package logging
