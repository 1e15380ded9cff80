// Package logging assembles structured slog loggers and formatting helpers used
// across mediatidy commands.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the per-run log file, and exposes context-aware helpers so batch code can
// tag log lines with run IDs, operations and item names automatically. The
// console side can be suspended while a progress bar owns the terminal; the
// file side keeps recording. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every command
// emits records with the same shape.
package logging
