package erd

import (
	"fmt"
	"strings"
	"unicode"
)

// Mermaid renders the graph as a Mermaid erDiagram. Parents sit on the left
// of every relationship line; identifying relationships are drawn solid and
// the others dashed.
func (g *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	for _, t := range g.Tables {
		if len(t.Columns) == 0 {
			sb.WriteString(fmt.Sprintf("    %s {\n    }\n", sanitizeNodeID(t.Name)))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s {\n", sanitizeNodeID(t.Name)))
		for _, c := range t.Columns {
			line := fmt.Sprintf("        %s %s", mermaidType(c.Type), sanitizeNodeID(c.Name))
			if k := mermaidKeys(c.Role); k != "" {
				line += " " + k
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("    }\n")
	}

	for _, r := range g.Relationships {
		child := "o{"
		if r.Label == OneToOne {
			child = "o|"
		}
		line := ".."
		if r.Identifying {
			line = "--"
		}
		sb.WriteString(fmt.Sprintf("    %s ||%s%s %s : %q\n",
			sanitizeNodeID(r.Parent), line, child, sanitizeNodeID(r.Child), strings.Join(r.Columns, ", ")))
	}
	return sb.String()
}

// sanitizeNodeID ensures names are valid mermaid identifiers
func sanitizeNodeID(name string) string {
	return strings.NewReplacer(
		".", "_",
		"-", "_",
		" ", "_",
	).Replace(name)
}

// mermaidType keeps the leading word of a SQL type: VARCHAR(255) -> VARCHAR.
func mermaidType(sqlType string) string {
	word := strings.FieldsFunc(sqlType, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(word) == 0 {
		return "ANY"
	}
	return word[0]
}

func mermaidKeys(r Role) string {
	switch r {
	case RolePK:
		return "PK"
	case RoleFK:
		return "FK"
	case RolePKFK:
		return "PK, FK"
	}
	return ""
}
