package localize

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"tableforge/internal/diagnostic"
	"tableforge/internal/table"
)

// Entry is one localization table row: the derived key and the source text
// plus empty slots for each target language.
type Entry struct {
	Key string `json:"-"`
	Ko  string `json:"ko"`
	En  string `json:"en"`
	Ja  string `json:"ja"`
}

// Collector gathers localization entries across sheets. The first sheet to
// produce a key wins; later duplicates keep the first text.
type Collector struct {
	// Rewrite controls whether source cells are replaced by their keys.
	Rewrite bool

	entries map[string]Entry
	diags   *diagnostic.Diagnostics
}

// NewCollector creates a Collector reporting into diags.
func NewCollector(rewrite bool, diags *diagnostic.Diagnostics) *Collector {
	return &Collector{
		Rewrite: rewrite,
		entries: make(map[string]Entry),
		diags:   diags,
	}
}

// Len returns the number of collected keys.
func (c *Collector) Len() int {
	return len(c.entries)
}

// CollectSheet scans the sheet's local_string columns, collects entries,
// and (when Rewrite is on) replaces cells with their keys. Returns true if
// any cell changed.
//
// A reference column named by the annotation but absent from the sheet is
// reported as a warning and that column's cells are skipped.
func (c *Collector) CollectSheet(s *table.Sheet) bool {
	changed := false

	for colIdx, col := range s.Columns {
		ann := table.ParseAnnotation(s.Types[col])
		if ann.Kind() != table.KindLocalized {
			continue
		}

		loc := diagnostic.Location{File: s.File, Sheet: s.Name, Column: col}

		refs := ann.RefColumns()
		refIdx := make([]int, len(refs))
		missing := false
		for i, ref := range refs {
			refIdx[i] = s.ColumnIndex(ref)
			if refIdx[i] < 0 {
				c.diags.AddWarning("unknown_reference",
					"reference column "+ref+" does not exist", loc)
				missing = true
			}
		}
		if missing {
			continue
		}

		for rowIdx, row := range s.Rows {
			text := row[colIdx]
			if text == "" {
				continue
			}

			key := c.deriveKey(s, row, rowIdx, refIdx)

			if text == key {
				continue
			}

			if _, seen := c.entries[key]; !seen {
				c.entries[key] = Entry{Key: key, Ko: text}
			}

			if c.Rewrite {
				row[colIdx] = key
				changed = true
			}
		}
	}

	return changed
}

// deriveKey builds fileStem.sheetName.<suffix>: reference values joined by
// "." when references are declared, the 1-based row number otherwise.
func (c *Collector) deriveKey(s *table.Sheet, row []string, rowIdx int, refIdx []int) string {
	parts := []string{s.File, s.Name}

	if len(refIdx) == 0 {
		parts = append(parts, strconv.Itoa(rowIdx+1))
	} else {
		for _, idx := range refIdx {
			parts = append(parts, row[idx])
		}
	}

	return strings.Join(parts, ".")
}

// MergeFile folds a previously written localization table into the
// collector. Keys the file has and this run did not touch survive as they
// are; for keys collected this run, the file's delivered translations are
// kept while the source text stays the freshly collected one. A missing
// file is not an error.
func (c *Collector) MergeFile(path string) error {
	entries, err := LoadEntries(path)
	if err != nil {
		return err
	}

	for _, e := range entries {
		cur, seen := c.entries[e.Key]
		if !seen {
			c.entries[e.Key] = e
			continue
		}

		cur.En = e.En
		cur.Ja = e.Ja
		c.entries[e.Key] = cur
	}

	return nil
}

// LoadEntries reads a localization table written by WriteJSON. gjson keeps
// the read tolerant of hand edits by translators. A missing file yields no
// entries and no error.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading localization table: %w", err)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("localization table %s: top level is not an object", path)
	}

	var entries []Entry
	root.ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, Entry{
			Key: key.String(),
			Ko:  value.Get("ko").String(),
			En:  value.Get("en").String(),
			Ja:  value.Get("ja").String(),
		})
		return true
	})

	return entries, nil
}

// Entries returns all collected entries sorted by key.
func (c *Collector) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

// WriteJSON writes the localization table as {key: {"ko","en","ja"}} with
// keys in sorted order.
func (c *Collector) WriteJSON(path string) error {
	entries := c.Entries()

	// Hand-assembled for deterministic key order, same as sheet emission.
	var b strings.Builder
	b.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}

		key, err := json.Marshal(e.Key)
		if err != nil {
			return fmt.Errorf("encoding localization key: %w", err)
		}
		val, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding localization entry: %w", err)
		}

		b.WriteString("\n  ")
		b.Write(key)
		b.WriteString(": ")
		b.Write(val)
	}
	if len(entries) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing localization table: %w", err)
	}

	return nil
}

// WriteCSV writes the localization table as a review-friendly CSV with a
// key,ko,en,ja header.
func (c *Collector) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating localization csv: %w", err)
	}

	w := csv.NewWriter(f)
	werr := w.Write([]string{"key", "ko", "en", "ja"})
	for _, e := range c.Entries() {
		if werr != nil {
			break
		}
		werr = w.Write([]string{e.Key, e.Ko, e.En, e.Ja})
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}

	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing localization csv: %w", werr)
	}

	return nil
}
