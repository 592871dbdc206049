// Package diag provides structured diagnostics shared by extraction and synthesis.
//
// Diagnostics describe recoverable problems: the operation that produced them
// still returns a usable result. Fatal conditions are reported as Go errors by
// the package that detects them.
package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// MalformedDiagram marks an edge with a missing endpoint or an invalid
	// endpoint type combination. The edge is skipped.
	MalformedDiagram Kind = "malformed-diagram"

	// UnclassifiableCardinality marks a relationship end whose cardinality
	// could not be classified. The relationship is not synthesized.
	UnclassifiableCardinality Kind = "unclassifiable-cardinality"

	// StructuralAnomaly marks a modeling anomaly such as an identifying
	// relationship between two strong entities or a weak many-to-many.
	StructuralAnomaly Kind = "structural-anomaly"

	// UnsupportedRelationship marks a relationship that is not binary.
	UnsupportedRelationship Kind = "unsupported-relationship"
)

// Diagnostic is a single recoverable problem.
type Diagnostic struct {
	Kind    Kind
	Subject string // diagram-local id or table name the diagnostic is about
	Message string
}

func (d Diagnostic) String() string {
	if d.Subject == "" {
		return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Subject, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic built from a format string.
func (l *List) Add(kind Kind, subject, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// Extend appends all diagnostics from other.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// Empty reports whether the list has no entries.
func (l List) Empty() bool {
	return len(l) == 0
}

// OfKind returns the diagnostics with the given kind.
func (l List) OfKind(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Strings renders every diagnostic.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.String()
	}
	return out
}

func (l List) String() string {
	return strings.Join(l.Strings(), "\n")
}
