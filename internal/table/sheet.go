package table

// Sheet is one converted table: a single CSV file or one worksheet of a book.
type Sheet struct {
	// File is the source file stem (no directory, no extension).
	File string
	// Name is the sheet name; for CSV input it equals File.
	Name string
	// Columns lists header names in left-to-right order.
	Columns []string
	// Types maps column name to its type annotation string.
	Types map[string]string
	// Rows holds the data rows, each as wide as Columns.
	Rows [][]string
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (s *Sheet) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}

	return -1
}

// Column returns the cells of the named column in row order.
// Returns nil if the column does not exist.
func (s *Sheet) Column(name string) []string {
	idx := s.ColumnIndex(name)
	if idx < 0 {
		return nil
	}

	cells := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		cells[i] = row[idx]
	}

	return cells
}

// SetColumn replaces the cells of the column at idx with values.
// Extra values are ignored; missing values leave rows untouched.
func (s *Sheet) SetColumn(idx int, values []string) {
	for i, row := range s.Rows {
		if i >= len(values) {
			return
		}
		row[idx] = values[i]
	}
}
