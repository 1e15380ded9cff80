// Package namematch picks the observed name that best represents an expected
// one.
//
// Callers pass a target label (a manifest entry, a parsed prefix, a path the
// download manager was told to write) and the labels actually observed at
// that moment (a directory listing, a set of log files). Match scores every
// candidate with a case-insensitive normalized edit-distance ratio and returns
// the highest scorer; on equal scores the earliest candidate wins, so the
// same inputs always select the same file.
//
// There is no acceptance threshold. A low best score is still returned and it
// is up to the caller to warn about it.
package namematch
