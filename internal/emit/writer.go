package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tableforge/internal/table"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// SafeName replaces characters unfit for file or directory names with "_".
// Alphanumerics, underscore, hyphen, and space survive; the result is
// trimmed and never empty.
func SafeName(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == '_' || ch == '-' || ch == ' ':
			b.WriteRune(ch)
		default:
			b.WriteByte('_')
		}
	}

	name := strings.TrimSpace(b.String())
	if name == "" {
		return "_"
	}

	return name
}

// SheetPath returns where a sheet's JSON lives under outDir.
func SheetPath(outDir, fileStem, sheetName string) string {
	return filepath.Join(outDir, SafeName(fileStem), SafeName(sheetName)+".json")
}

// WriteSheet writes the sheet under outDir and returns the written path.
func WriteSheet(outDir string, s *table.Sheet) (string, error) {
	path := SheetPath(outDir, s.File, s.Name)

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if err := WriteSheetFile(path, s); err != nil {
		return "", err
	}

	return path, nil
}

// WriteSheetFile writes the sheet to an explicit path, replacing any
// existing file atomically so a crash mid-write cannot truncate a
// previously converted sheet.
func WriteSheetFile(path string, s *table.Sheet) error {
	data, err := EncodeSheet(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp sheet file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing sheet %s: %w", path, werr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing sheet %s: %w", path, err)
	}

	if err := os.Chmod(path, filePerm); err != nil {
		return fmt.Errorf("fixing sheet permissions: %w", err)
	}

	return nil
}

// EncodeSheet renders the sheet JSON. encoding/json would sort the types
// object alphabetically, so the object is assembled by hand to keep header
// order; rows must line up with it positionally.
func EncodeSheet(s *table.Sheet) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n  \"types\": {")

	for i, col := range s.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")

		if err := encodeValue(&buf, col); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := encodeValue(&buf, s.Types[col]); err != nil {
			return nil, err
		}
	}

	if len(s.Columns) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("},\n  \"rows\": [")

	kinds := columnKinds(s)
	for i, row := range s.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    [")

		for j, cell := range row {
			if j > 0 {
				buf.WriteString(", ")
			}
			if err := encodeValue(&buf, cellValue(kinds[j], cell)); err != nil {
				return nil, err
			}
		}
		buf.WriteByte(']')
	}

	if len(s.Rows) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("]\n}\n")

	return buf.Bytes(), nil
}

// encodeValue marshals one JSON value without HTML escaping, so Korean text
// and bracket characters stay readable in diffs.
func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding sheet value: %w", err)
	}

	// Encode appends a newline; the layout above places its own.
	buf.Truncate(buf.Len() - 1)

	return nil
}

func columnKinds(s *table.Sheet) []table.BaseKind {
	kinds := make([]table.BaseKind, len(s.Columns))
	for i, col := range s.Columns {
		kinds[i] = table.ParseAnnotation(s.Types[col]).Kind()
	}

	return kinds
}

// cellValue types a cell for output. Numeric and float columns emit
// numbers when the cell parses; anything else falls back to the raw string.
func cellValue(kind table.BaseKind, cell string) any {
	switch kind {
	case table.KindNumeric:
		if v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err == nil {
			return v
		}
	case table.KindFloat:
		if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return v
		}
	}

	return cell
}
