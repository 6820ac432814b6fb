// Package logging assembles structured slog loggers and formatting helpers used
// across MAGF commands and services.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so handlers can tag log lines
// with container IDs, playback sessions, and correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
