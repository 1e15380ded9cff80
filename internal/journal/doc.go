// Package journal records every move and rename mediatidy performs so a run
// can be listed and reverted.
//
// The journal is a SQLite database (modernc.org/sqlite, WAL mode) under the
// state directory. A run groups the entries written by one group or renumber
// invocation under a UUID; Undo walks a run's entries newest first and moves
// each destination back to its source.
package journal
