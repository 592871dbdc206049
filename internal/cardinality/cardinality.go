// Package cardinality classifies relationship-end annotations of ER diagrams.
//
// Each notation encodes cardinality differently: UML and simplified Chen use the
// edge label, Chen and crow's foot use arrow heads in the edge style. Classify
// maps an edge's (style, label) pair to one of four classes, or Unknown.
package cardinality

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is the cardinality of one relationship end.
type Class int

const (
	Unknown Class = iota
	ExactlyOne
	OptionalZeroOrOne
	ZeroOrMore
	OneOrMore
)

func (c Class) String() string {
	switch c {
	case ExactlyOne:
		return "Exactly 1"
	case OptionalZeroOrOne:
		return "Optional: 0 or 1"
	case ZeroOrMore:
		return "0 or More"
	case OneOrMore:
		return "1 or More"
	default:
		return "Unknown"
	}
}

// IsOne reports whether the class allows at most one related instance.
func (c Class) IsOne() bool {
	return c == ExactlyOne || c == OptionalZeroOrOne
}

// IsMany reports whether the class allows more than one related instance.
func (c Class) IsMany() bool {
	return c == ZeroOrMore || c == OneOrMore
}

// Notation is a diagram cardinality notation.
type Notation string

const (
	UML        Notation = "uml"
	Chen       Notation = "chen"
	CrowsFoot  Notation = "crows-foot"
	ChenSimple Notation = "chen-simple"
)

// Notations lists every supported notation.
var Notations = []Notation{UML, Chen, CrowsFoot, ChenSimple}

// ParseNotation resolves a notation name. Matching ignores case, spaces,
// apostrophes and underscores, so "Crow's Foot" and "crows_foot" both work.
func ParseNotation(s string) (Notation, error) {
	key := strings.NewReplacer(" ", "", "'", "", "_", "", "-", "", "(", "", ")", "").Replace(strings.ToLower(s))
	switch key {
	case "uml":
		return UML, nil
	case "chen":
		return Chen, nil
	case "crowsfoot", "crowfoot":
		return CrowsFoot, nil
	case "chensimple":
		return ChenSimple, nil
	}
	return "", fmt.Errorf("unknown notation %q (expected one of uml, chen, crows-foot, chen-simple)", s)
}

// styleRule matches an arrow head drawn at either end of an edge.
type styleRule struct {
	end   string
	start string
	class Class
}

type rules struct {
	labels map[string]Class
	styles []styleRule
}

var notationRules = map[Notation]rules{
	UML: {
		labels: map[string]Class{
			"1":    ExactlyOne,
			"0..1": OptionalZeroOrOne,
			"*":    ZeroOrMore,
			"0..*": ZeroOrMore,
			"1..*": OneOrMore,
		},
	},
	Chen: {
		labels: map[string]Class{
			"1..*": OneOrMore,
		},
		styles: []styleRule{
			{end: "endArrow=open;endFill=0", start: "startArrow=open;startFill=0", class: ExactlyOne},
			{end: "endArrow=block;endFill=1", start: "startArrow=block;startFill=1", class: OptionalZeroOrOne},
		},
	},
	CrowsFoot: {
		styles: []styleRule{
			{end: "endArrow=ERmandOne;endFill=0", start: "startArrow=ERmandOne;startFill=0", class: ExactlyOne},
			{end: "endArrow=ERzeroToOne;endFill=0", start: "startArrow=ERzeroToOne;startFill=0", class: OptionalZeroOrOne},
			{end: "endArrow=ERzeroToMany;endFill=0", start: "startArrow=ERzeroToMany;startFill=0", class: ZeroOrMore},
			{end: "endArrow=ERoneToMany;endFill=0", start: "startArrow=ERoneToMany;startFill=0", class: OneOrMore},
			{end: "endArrow=ERmany;endFill=0", start: "startArrow=ERmany;startFill=0", class: ZeroOrMore},
		},
	},
	ChenSimple: {
		labels: map[string]Class{
			"1": OptionalZeroOrOne,
			"N": ZeroOrMore,
			"M": ZeroOrMore,
		},
	},
}

// Classify maps an edge's style and label to a cardinality class under the
// given notation. Label rules are tried first, then arrow-head style rules,
// then notation-specific fallbacks. Unknown is returned when nothing matches.
func Classify(n Notation, style, label string) Class {
	r, ok := notationRules[n]
	if !ok {
		return Unknown
	}

	label = strings.TrimSpace(label)
	if c, ok := r.labels[label]; ok {
		return c
	}

	for _, s := range r.styles {
		if strings.Contains(style, s.end) || strings.Contains(style, s.start) {
			return s.class
		}
	}

	switch n {
	case UML:
		return classifyRange(label)
	case Chen:
		return chenFallback(style)
	}
	return Unknown
}

// classifyRange handles UML multiplicity ranges such as "5..10" or "2..*".
func classifyRange(label string) Class {
	lo, hi, ok := strings.Cut(label, "..")
	if !ok {
		return Unknown
	}
	low, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || low < 0 {
		return Unknown
	}
	hi = strings.TrimSpace(hi)
	if hi == "*" {
		if low == 0 {
			return ZeroOrMore
		}
		return OneOrMore
	}
	high, err := strconv.Atoi(hi)
	if err != nil || high < low || high == 0 {
		return Unknown
	}
	switch {
	case high == 1 && low == 1:
		return ExactlyOne
	case high == 1:
		return OptionalZeroOrOne
	case low == 0:
		return ZeroOrMore
	default:
		return OneOrMore
	}
}

// chenFallback covers edge styles older Chen diagrams were drawn with.
func chenFallback(style string) Class {
	switch {
	case strings.Contains(style, "endArrow=none;endFill=0;startArrow=none;startFill=0;"):
		return ZeroOrMore
	case strings.Contains(style, "endArrow=blockThin;") || strings.Contains(style, "startArrow=blockThin;"):
		return OptionalZeroOrOne
	case strings.Contains(style, "endArrow=none;endFill=0") && !strings.Contains(style, "startArrow="):
		return ZeroOrMore
	case strings.Contains(style, "startArrow=none;startFill=0") && !strings.Contains(style, "endArrow="):
		return ZeroOrMore
	}
	return Unknown
}
