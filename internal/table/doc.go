// Package table models converted design tables: a sheet is a type row,
// a header row, and data rows, exactly the shape the emitted JSON carries.
//
// It also parses column type annotations. An annotation is a semicolon
// separated string whose first segment is the base semantic type and whose
// later segments are flags, e.g. "int;resolved" or "local_string;[Id]".
package table
