package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"tableforge/internal/common"
	"tableforge/internal/table"
)

// ErrEmptySheet marks a file with no header row or no data columns.
// Callers skip such files rather than failing the run.
var ErrEmptySheet = errors.New("empty sheet")

// ReadSheet reads one CSV table file. Row 0 is the type row, row 1 the
// header row, rows 2+ are data. Ragged rows are padded or truncated to the
// header width. Files that are not valid UTF-8 are retried as CP949, the
// encoding legacy spreadsheet exports use.
func ReadSheet(path string) (*table.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table file: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, derr := korean.EUCKR.NewDecoder().Bytes(data)
		if derr != nil {
			return nil, fmt.Errorf("decoding %s as cp949: %w", path, derr)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// A usable sheet has a type row, a header row, and at least one data row.
	if len(rows) < 3 {
		return nil, ErrEmptySheet
	}

	typeRow := rows[0]
	header := rows[1]
	if common.IsEmpty(header) {
		return nil, ErrEmptySheet
	}

	stem := Stem(path)
	s := &table.Sheet{
		File:    stem,
		Name:    stem,
		Columns: make([]string, len(header)),
		Types:   make(map[string]string, len(header)),
	}

	typeRow = common.PadTo(typeRow, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		s.Columns[i] = col
		s.Types[col] = strings.TrimSpace(typeRow[i])
	}

	for _, row := range rows[2:] {
		s.Rows = append(s.Rows, common.PadTo(row, len(header)))
	}

	return s, nil
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
