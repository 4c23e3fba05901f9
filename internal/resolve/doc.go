// Package resolve rewrites placeholder tokens in sheet columns to their
// permanent integer identifiers.
//
// A placeholder is the text "[tag]". In numeric columns it must occupy the
// whole cell; in free-text columns every inline occurrence is replaced.
// Identifiers come from the tag store, which allocates a fresh one the
// first time a tag is seen anywhere in the project.
package resolve
