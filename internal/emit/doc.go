// Package emit writes converted sheets as JSON and reads them back.
//
// Each sheet lands at <outDir>/<fileStem>/<sheetName>.json with the shape
// {"types": {column: annotation}, "rows": [[...]]}. The types object keeps
// header order, and rows carry typed cells: numeric and float columns emit
// numbers, everything else strings.
package emit
