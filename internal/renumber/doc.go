// Package renumber zero-pads the numeric prefixes of course folders and the
// lesson files inside them so they sort naturally.
//
// Names look like "7. Setup" or "12 Deploying.mp4": one to three digits, an
// optional dot, a space, then the title. The title is trimmed to start at its
// first letter and the name is rewritten as "<padded prefix>. <title>", with
// the width taken from the largest prefix among siblings. Names that do not
// follow the pattern are reported and left alone.
package renumber
