// Package diagnostic provides structured warnings and errors collected
// while converting game-design tables.
//
// Key capabilities:
//   - Per-file format errors that do not abort the whole run
//   - Unknown reference-column warnings from localization key derivation
//   - Source locations down to sheet, column, and row
package diagnostic
