// Package run orchestrates a conversion run: load the tag store once,
// process every target file in a fixed order, and save the store exactly
// once at run end, on success and on failure alike.
//
// Per-file problems (a malformed numeric cell, an unreadable file) fail
// that file only; the remaining files still convert and the store still
// saves, so partial progress is never lost.
package run
