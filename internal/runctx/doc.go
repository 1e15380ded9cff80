// Package runctx carries per-run identifiers (journal run ID, operation name,
// current item) through context.Context so logging can attach them without
// every call site threading extra parameters.
package runctx
