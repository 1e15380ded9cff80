// Package batch runs per-item filesystem work so one bad item never aborts
// the rest of a run.
//
// It owns the error taxonomy shared by grouping, renumbering, journaling and
// progress watching: sentinel markers wrapped with operation context so
// callers can branch with errors.Is, plus Classify for turning raw os errors
// into those markers. Runner.Each logs each failure with enough context to
// identify the offending item and keeps going, returning a Summary that the
// CLI turns into an exit status.
package batch
