// Command mediatidy organizes downloaded media folders.
//
// It groups loose files into folders named by a manifest, zero-pads numeric
// prefixes so listings sort naturally, waits for in-flight downloads, and
// keeps a journal so every move can be undone.
//
// Run `mediatidy config init` to create a sample configuration.
package main
