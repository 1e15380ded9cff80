// Package preflight provides readiness checks for the directories mediatidy
// reads from and writes to.
//
// Mutating commands (group, renumber, undo) check the target directory for
// read/write/search access before taking a lock, so a permissions problem is
// reported once instead of once per file. The config validate command runs
// RunAll to report on the configured log, state and download log
// directories.
package preflight
