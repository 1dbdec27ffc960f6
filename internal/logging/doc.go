// Package logging provides a leveled printf-style logging interface for the
// image catalog, backed by log/slog.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level is configured via the DEBUG or LOG_LEVEL environment variables.
// Output goes to stderr through a tint handler (colour only when stderr is a
// terminal), or through the slog JSON handler when LOG_FORMAT=json.
package logging
