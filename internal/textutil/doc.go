// Package textutil provides the string helpers shared by matching, grouping,
// and renumbering.
//
// The primary use cases are:
//   - Scoring how close two names are on a 0-100 scale
//   - Case folding names before comparison
//   - Sanitizing filenames and path segments for safe filesystem use
//
// Similarity is a normalized Levenshtein ratio computed over runes, so
// accented and non-Latin names are compared character by character rather
// than byte by byte.
package textutil
