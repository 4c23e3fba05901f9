// Package tagstore is the durable record of every symbolic tag ever
// resolved: tag -> permanent integer identifier -> first-known origin.
//
// The store is loaded once at run start, mutated in memory while sheets are
// processed, and saved exactly once at run end. Identifiers are allocated
// monotonically above a configurable threshold and are never reused or
// renumbered; a tag keeps its identifier for the life of the project.
package tagstore
