// Package grouping moves the files of a flat download folder into the
// subfolders a manifest describes.
//
// Every expected name is paired with the closest file still left in the
// folder using namematch, so the candidate set shrinks as files are placed
// and no file is moved twice. Planning is separate from applying: Plan
// computes the moves (and is all a dry run does), Apply performs them through
// a batch runner so one failed move never stops the rest, recording each
// move for undo.
package grouping
