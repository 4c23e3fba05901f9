// Package localize derives localization keys for translatable text.
//
// Columns with base type local_string hold author-written source text. Each
// non-empty cell gets a key of the form fileStem.sheetName.<suffix>, where
// the suffix is the row's reference-column values (declared as "[col]"
// flags on the annotation) or, absent references, the 1-based row number.
// Collected texts become the localization table; source cells are rewritten
// to their keys so the game data references translations indirectly.
package localize
