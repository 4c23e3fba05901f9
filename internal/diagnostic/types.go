package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"tableforge/internal/common"
)

// Diagnostics holds all diagnostic information collected during a run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Loc identifies where in the source data this diagnostic applies.
	Loc Location
}

// Location points at a file, sheet, column, and row in the source tables.
// Zero-valued fields mean "not applicable": a file-level diagnostic carries
// only File, a column-level one File/Sheet/Column, and so on.
type Location struct {
	File   string
	Sheet  string
	Column string
	// Row is the 1-based data row number, 0 when the diagnostic is not row-scoped.
	Row int
}

// String returns a compact "file[sheet].column:row" rendering, omitting
// whatever parts are unset.
func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.File)
	if l.Sheet != "" {
		b.WriteString("[" + l.Sheet + "]")
	}
	if l.Column != "" {
		b.WriteString("." + l.Column)
	}
	if l.Row > 0 {
		fmt.Fprintf(&b, ":%d", l.Row)
	}

	return b.String()
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message string, loc Location) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Loc:      loc,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, loc Location) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Loc:      loc,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message string, loc Location) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Loc:      loc,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil if none.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if loc := d.Loc.String(); loc != "" {
		return loc + ": " + msg
	}

	return msg
}
