package emit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"tableforge/internal/table"
)

// LoadSheet reads a previously emitted sheet JSON back into a Sheet.
// gjson is used instead of encoding/json because the types object's key
// order is the column order and a Go map would lose it.
func LoadSheet(path string) (*table.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", path, err)
	}

	root := gjson.ParseBytes(data)
	types := root.Get("types")
	rows := root.Get("rows")
	if !types.IsObject() || !rows.IsArray() {
		return nil, fmt.Errorf("sheet %s: missing types or rows", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), ".json")
	s := &table.Sheet{
		File:  filepath.Base(filepath.Dir(path)),
		Name:  name,
		Types: make(map[string]string),
	}

	types.ForEach(func(key, value gjson.Result) bool {
		s.Columns = append(s.Columns, key.String())
		s.Types[key.String()] = value.String()
		return true
	})

	width := len(s.Columns)
	var badRow bool
	rows.ForEach(func(_, row gjson.Result) bool {
		if !row.IsArray() {
			badRow = true
			return false
		}

		cells := make([]string, 0, width)
		row.ForEach(func(_, cell gjson.Result) bool {
			cells = append(cells, cellString(cell))
			return true
		})

		for len(cells) < width {
			cells = append(cells, "")
		}
		s.Rows = append(s.Rows, cells[:width])

		return true
	})
	if badRow {
		return nil, fmt.Errorf("sheet %s: row is not a list", path)
	}

	return s, nil
}

// cellString renders a JSON cell back to its cell text. Integral numbers
// print without a decimal point so resolved identifiers round-trip exactly.
func cellString(cell gjson.Result) string {
	switch cell.Type {
	case gjson.Number:
		n := cell.Num
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	case gjson.Null:
		return ""
	default:
		return cell.String()
	}
}

// ListSheetFiles returns every sheet JSON under jsonRoot, sorted by slash
// path. Files whose stem matches skipStem (the localization table itself)
// are excluded.
func ListSheetFiles(jsonRoot, skipStem string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(jsonRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if skipStem != "" && strings.TrimSuffix(filepath.Base(path), ".json") == skipStem {
			return nil
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return filepath.ToSlash(files[i]) < filepath.ToSlash(files[j])
	})

	return files, nil
}
