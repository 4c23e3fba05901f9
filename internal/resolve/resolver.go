package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"tableforge/internal/diagnostic"
	"tableforge/internal/table"
	"tableforge/internal/tagstore"
)

// CollisionPolicy controls whether numeric literals are checked against
// already-assigned identifiers.
type CollisionPolicy int

const (
	// CollisionPermissive passes literals through untouched; a literal may
	// coincide with an allocated identifier.
	CollisionPermissive CollisionPolicy = iota
	// CollisionStrict fails the file when a literal in a resolved column
	// equals an identifier already assigned to a tag.
	CollisionStrict
)

// String returns a human-readable policy name.
func (p CollisionPolicy) String() string {
	if p == CollisionStrict {
		return "strict"
	}

	return "permissive"
}

// Config holds configuration for placeholder resolution.
type Config struct {
	// StartThreshold is the lowest identifier fresh allocation may use.
	StartThreshold int64
	// Collision selects the literal/identifier collision policy.
	Collision CollisionPolicy
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		StartThreshold: 1000000,
		Collision:      CollisionPermissive,
	}
}

var (
	wholeCellRe = regexp.MustCompile(`^\[([^\[\]]*)\]$`)
	inlineRe    = regexp.MustCompile(`\[([^\[\]]+)\]`)
)

// Resolver rewrites placeholders in sheets against one shared tag store.
// The caller owns the store's load/save lifecycle.
type Resolver struct {
	store  *tagstore.Store
	config Config
	diags  *diagnostic.Diagnostics

	// ResolvedCells counts placeholder occurrences rewritten this run.
	ResolvedCells int
	// NewTags counts identifiers freshly allocated this run.
	NewTags int
}

// NewResolver creates a Resolver bound to store, reporting into diags.
func NewResolver(store *tagstore.Store, config Config, diags *diagnostic.Diagnostics) *Resolver {
	return &Resolver{
		store:  store,
		config: config,
		diags:  diags,
	}
}

// ResolveSheet processes every eligible column of the sheet in left-to-right
// header order, rows top-down. Numeric columns get whole-cell resolution and
// the resolved-identifier marker; free-text columns get inline resolution.
//
// The first malformed numeric cell aborts the sheet with a *FormatError
// (or *CollisionError under the strict policy); the sheet is left partially
// rewritten and the caller must discard it.
func (r *Resolver) ResolveSheet(s *table.Sheet) error {
	for idx, col := range s.Columns {
		ann := table.ParseAnnotation(s.Types[col])

		loc := diagnostic.Location{File: s.File, Sheet: s.Name, Column: col}

		switch ann.Kind() {
		case table.KindNumeric:
			touched, err := r.resolveNumericColumn(s, idx, loc)
			if err != nil {
				return err
			}

			// The marker reflects this run's data: set when at least one
			// placeholder resolved, cleared when none did.
			s.Types[col] = ann.WithResolved(touched).String()

		case table.KindText, table.KindLocalized:
			if err := r.resolveTextColumn(s, idx, loc); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveNumericColumn rewrites one numeric column in place and reports
// whether any placeholder was resolved in it.
func (r *Resolver) resolveNumericColumn(s *table.Sheet, idx int, loc diagnostic.Location) (bool, error) {
	touched := false

	for rowIdx, row := range s.Rows {
		loc.Row = rowIdx + 1
		cell := strings.TrimSpace(row[idx])

		if cell == "" {
			row[idx] = "0"
			continue
		}

		if tag, ok := wholeCellTag(cell); ok {
			id, err := r.resolveTag(tag, loc)
			if err != nil {
				return false, err
			}

			row[idx] = strconv.FormatInt(id, 10)
			touched = true
			continue
		}

		lit, ok := parseIntegerLiteral(cell)
		if !ok {
			r.diags.AddError("bad_numeric_cell", "not a placeholder and not a number: "+cell, loc)
			return false, &FormatError{Loc: loc, Cell: cell}
		}

		if r.config.Collision == CollisionStrict {
			if tag, used := r.store.Owner(lit); used {
				r.diags.AddError("identifier_collision",
					"literal equals identifier of tag "+tag, loc)
				return false, &CollisionError{Loc: loc, ID: lit, Tag: tag}
			}
		}

		row[idx] = strconv.FormatInt(lit, 10)
	}

	return touched, nil
}

// resolveTextColumn replaces every inline placeholder in one free-text
// column. Cells without brackets are left untouched.
func (r *Resolver) resolveTextColumn(s *table.Sheet, idx int, loc diagnostic.Location) error {
	for rowIdx, row := range s.Rows {
		loc.Row = rowIdx + 1
		cell := row[idx]

		if !strings.ContainsRune(cell, '[') {
			continue
		}

		var resolveErr error
		out := inlineRe.ReplaceAllStringFunc(cell, func(match string) string {
			if resolveErr != nil {
				return match
			}

			tag := strings.TrimSpace(match[1 : len(match)-1])
			if tag == "" {
				// Whitespace between brackets is not a tag; leave the
				// text as the author wrote it.
				return match
			}

			id, err := r.resolveTag(tag, loc)
			if err != nil {
				resolveErr = err
				return match
			}

			return strconv.FormatInt(id, 10)
		})
		if resolveErr != nil {
			return resolveErr
		}

		row[idx] = out
	}

	return nil
}

// resolveTag looks the tag up or allocates a fresh identifier, refining the
// tag's origin either way.
func (r *Resolver) resolveTag(tag string, loc diagnostic.Location) (int64, error) {
	id, fresh, err := r.store.Resolve(tag, loc.Sheet, loc.Column, r.config.StartThreshold)
	if err != nil {
		return 0, err
	}

	r.ResolvedCells++
	if fresh {
		r.NewTags++
	}

	return id, nil
}

// wholeCellTag reports whether the trimmed cell is a whole-cell placeholder
// and returns the tag between the brackets.
func wholeCellTag(cell string) (string, bool) {
	m := wholeCellRe.FindStringSubmatch(cell)
	if m == nil {
		return "", false
	}

	tag := strings.TrimSpace(m[1])
	if tag == "" {
		return "", false
	}

	return tag, true
}

// parseIntegerLiteral accepts plain integers plus integral floats such as
// "5.0", which spreadsheet exports produce for numeric columns.
func parseIntegerLiteral(cell string) (int64, bool) {
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return v, true
	}

	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}

	return int64(f), true
}
