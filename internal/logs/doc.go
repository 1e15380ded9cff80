// Package logs provides file tailing and offset helpers for the per-run log
// files and for third-party logs that are still being written.
//
// Tail serves `mediatidy logs`: negative offsets read the last N lines and
// follow mode waits for new lines until a deadline. Follower keeps an offset
// across calls and only hands out complete lines, which is what the download
// progress heuristic needs while another program appends to its log. Latest
// finds the newest file matching a pattern.
package logs
