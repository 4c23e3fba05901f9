package table

import (
	"regexp"
	"strings"
)

// BaseKind classifies the base semantic type of a column.
type BaseKind int

const (
	KindOther BaseKind = iota
	KindNumeric
	KindFloat
	KindText
	KindLocalized
)

// String returns a human-readable representation of the BaseKind.
func (k BaseKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindLocalized:
		return "localized"
	default:
		return "other"
	}
}

// ResolvedFlag marks a column whose values have been rewritten to
// resolved tag identifiers.
const ResolvedFlag = "resolved"

var refFlagRe = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Annotation is a parsed column type annotation.
type Annotation struct {
	// Base is the base semantic type, lowercased and trimmed.
	Base string
	// Flags are the remaining segments, trimmed, in declaration order.
	Flags []string
}

// ParseAnnotation splits a raw annotation string into base type and flags.
// Empty segments are dropped.
func ParseAnnotation(raw string) Annotation {
	segs := strings.Split(raw, ";")

	a := Annotation{Base: strings.ToLower(strings.TrimSpace(segs[0]))}
	for _, seg := range segs[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		a.Flags = append(a.Flags, seg)
	}

	return a
}

// String renders the annotation back to its "base;flag;flag" form.
func (a Annotation) String() string {
	if len(a.Flags) == 0 {
		return a.Base
	}

	return a.Base + ";" + strings.Join(a.Flags, ";")
}

// Kind classifies the base type.
func (a Annotation) Kind() BaseKind {
	switch a.Base {
	case "int", "long":
		return KindNumeric
	case "float":
		return KindFloat
	case "string", "string_list", "int_list":
		return KindText
	case "local_string":
		return KindLocalized
	default:
		return KindOther
	}
}

// Resolved reports whether the resolved-identifier marker is present.
func (a Annotation) Resolved() bool {
	for _, f := range a.Flags {
		if f == ResolvedFlag {
			return true
		}
	}

	return false
}

// WithResolved returns a copy of the annotation with the resolved-identifier
// marker present or absent. Other flags keep their order.
func (a Annotation) WithResolved(on bool) Annotation {
	out := Annotation{Base: a.Base}
	for _, f := range a.Flags {
		if f == ResolvedFlag {
			continue
		}
		out.Flags = append(out.Flags, f)
	}

	if on {
		out.Flags = append(out.Flags, ResolvedFlag)
	}

	return out
}

// RefColumns returns the reference column names declared as "[col]" flags,
// in declaration order.
func (a Annotation) RefColumns() []string {
	var refs []string
	for _, f := range a.Flags {
		for _, m := range refFlagRe.FindAllStringSubmatch(f, -1) {
			name := strings.TrimSpace(m[1])
			if name != "" {
				refs = append(refs, name)
			}
		}
	}

	return refs
}
