package tagstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"

	"tableforge/internal/common"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Record is one tag assignment: the tag text, its permanent identifier,
// and the sheet/column where the tag was first meaningfully observed.
type Record struct {
	Tag    string `json:"string"`
	ID     int64  `json:"int"`
	Sheet  string `json:"sheetName"`
	Column string `json:"columnName"`
}

// storeFile is the canonical persisted shape.
type storeFile struct {
	Tags []Record `json:"tags"`
}

// Store holds every tag assignment made so far, across all runs.
// It is not safe for concurrent use; a run owns exactly one instance.
type Store struct {
	records map[string]*Record
	ids     map[int64]string
	maxID   int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		records: make(map[string]*Record),
		ids:     make(map[int64]string),
	}
}

// Load reads the persisted store at path. A missing file yields an empty
// store and no error. An unreadable or unrecognized file yields an empty,
// usable store together with a *CorruptError for logging; the run continues.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}

		return New(), &CorruptError{Path: path, Reason: err.Error()}
	}

	s, err := Parse(data)
	if err != nil {
		if ce, ok := err.(*CorruptError); ok {
			ce.Path = path
		}

		return s, err
	}

	return s, nil
}

// Parse decodes persisted store data. Three shapes are recognized and
// normalized into the canonical record list:
//
//   - canonical: {"tags": [{"string","int","sheetName","columnName"}, ...]}
//   - legacy:    {"tags": {"<tag>": <int>, ...}} with origins set to unknown
//   - oldest:    a bare top-level {"<tag>": <int>, ...} mapping
//
// Anything else yields an empty store plus a *CorruptError.
func Parse(data []byte) (*Store, error) {
	if !gjson.ValidBytes(data) {
		return New(), &CorruptError{Reason: "not valid JSON"}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return New(), &CorruptError{Reason: "top level is not an object"}
	}

	tags := root.Get("tags")
	switch {
	case tags.IsArray():
		return parseCanonical(data)
	case tags.IsObject():
		return parseFlat(tags)
	case !tags.Exists():
		// Oldest shape: the whole document is the flat mapping.
		return parseFlat(root)
	default:
		return New(), &CorruptError{Reason: `"tags" is neither a list nor a mapping`}
	}
}

func parseCanonical(data []byte) (*Store, error) {
	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return New(), &CorruptError{Reason: err.Error()}
	}

	s := New()
	for _, rec := range file.Tags {
		if rec.Tag == "" {
			return New(), &CorruptError{Reason: "record with empty tag"}
		}
		if rec.Sheet == "" {
			rec.Sheet = common.UnknownStr
		}
		if rec.Column == "" {
			rec.Column = common.UnknownStr
		}

		if err := s.Insert(rec.Tag, rec.ID, rec.Sheet, rec.Column); err != nil {
			return New(), &CorruptError{Reason: err.Error()}
		}
	}

	return s, nil
}

func parseFlat(mapping gjson.Result) (*Store, error) {
	s := New()

	var bad string
	mapping.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			bad = fmt.Sprintf("tag %q maps to non-numeric value", key.String())
			return false
		}

		err := s.Insert(key.String(), value.Int(), common.UnknownStr, common.UnknownStr)
		if err != nil {
			bad = err.Error()
			return false
		}

		return true
	})

	if bad != "" {
		return New(), &CorruptError{Reason: bad}
	}

	return s, nil
}

// Lookup returns the identifier assigned to tag, if any.
func (s *Store) Lookup(tag string) (int64, bool) {
	rec, ok := s.records[tag]
	if !ok {
		return 0, false
	}

	return rec.ID, true
}

// Used reports whether id is already assigned to some tag.
func (s *Store) Used(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Owner returns the tag holding id, if any.
func (s *Store) Owner(id int64) (string, bool) {
	tag, ok := s.ids[id]
	return tag, ok
}

// Len returns the number of tag records.
func (s *Store) Len() int {
	return len(s.records)
}

// Insert adds a new record. A tag must be non-empty text and an identifier
// must be positive; a store holding either would be rejected as corrupt on
// the next load, so they may never get in. It fails with *DuplicateTagError
// if the tag is already present and with a plain error otherwise; all of
// these indicate caller bugs, never data problems.
func (s *Store) Insert(tag string, id int64, sheet, column string) error {
	if tag == "" {
		return fmt.Errorf("tag must not be empty")
	}
	if id < 1 {
		return fmt.Errorf("identifier %d for tag %q is not positive", id, tag)
	}
	if rec, ok := s.records[tag]; ok {
		return &DuplicateTagError{Tag: tag, ID: rec.ID}
	}
	if owner, ok := s.ids[id]; ok {
		return fmt.Errorf("identifier %d already assigned to tag %q", id, owner)
	}

	rec := &Record{Tag: tag, ID: id, Sheet: sheet, Column: column}
	s.records[tag] = rec
	s.ids[id] = tag
	if id > s.maxID {
		s.maxID = id
	}

	return nil
}

// NextID returns the identifier the next new tag will receive:
// max(highest assigned, startThreshold-1) + 1. It is derived purely from
// the store's current contents.
func (s *Store) NextID(startThreshold int64) int64 {
	next := s.maxID + 1
	if next < startThreshold {
		next = startThreshold
	}

	return next
}

// RecordOrigin refines the origin of an existing tag. Unknown origins are
// replaced by the given sheet/column; concrete origins are never changed.
// Unknown tags are ignored.
func (s *Store) RecordOrigin(tag, sheet, column string) {
	rec, ok := s.records[tag]
	if !ok {
		return
	}

	if rec.Sheet == "" || rec.Sheet == common.UnknownStr {
		rec.Sheet = sheet
		rec.Column = column
	}
}

// Resolve returns the identifier for tag, allocating a fresh one above
// startThreshold if the tag has never been seen. The origin is refined in
// either case. The returned bool is true when a new identifier was issued.
func (s *Store) Resolve(tag, sheet, column string, startThreshold int64) (int64, bool, error) {
	if id, ok := s.Lookup(tag); ok {
		s.RecordOrigin(tag, sheet, column)
		return id, false, nil
	}

	id := s.NextID(startThreshold)
	if err := s.Insert(tag, id, sheet, column); err != nil {
		return 0, false, err
	}

	return id, true, nil
}

// Records returns all records sorted by identifier ascending.
func (s *Store) Records() []Record {
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Save writes the canonical shape to path, records sorted by identifier
// ascending so diffs stay stable under version control. The write is atomic:
// a temp file in the same directory is renamed over the target.
func (s *Store) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(storeFile{Tags: s.Records()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tag store: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing tag store: %w", werr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing tag store: %w", err)
	}

	if err := os.Chmod(path, filePerm); err != nil {
		return fmt.Errorf("fixing tag store permissions: %w", err)
	}

	return nil
}
