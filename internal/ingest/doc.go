// Package ingest reads CSV design tables and selects which files a run
// should process.
//
// A table file carries three sections: row 0 is the type row, row 1 the
// header row, and every following row is data. Target selection supports a
// full recursive scan and a diff-based list (changed files only), with a
// full-scan fallback when the list yields nothing usable.
package ingest
