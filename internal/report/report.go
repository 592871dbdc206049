// Package report renders human-readable command output: headers, aligned
// tables, comparison verdicts, diagnostics and ER summaries.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/erdsql/internal/compare"
	"github.com/dbsmedya/erdsql/internal/diag"
	"github.com/dbsmedya/erdsql/internal/erd"
)

// Printer writes reports to w. Colors are only emitted when enabled.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a Printer.
func New(w io.Writer, colored bool) *Printer {
	return &Printer{w: w, color: colored}
}

func (p *Printer) paint(c color.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Render(s)
}

// Header prints a boxed title.
func (p *Printer) Header(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(p.w, strings.Repeat("=", width))
	fmt.Fprintf(p.w, "  %s\n", p.paint(color.Bold, title))
	fmt.Fprintln(p.w, strings.Repeat("=", width))
}

// Section prints a section header.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.w, "[%s]\n", title)
	fmt.Fprintln(p.w, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// Table prints rows with every column padded to its widest cell. The first
// row is the header.
func (p *Printer) Table(rows [][]string) {
	fmt.Fprint(p.w, Align(rows, "  "))
}

// Align renders rows as left-aligned columns joined by sep. Widths count
// terminal cells, so wide runes stay aligned. Trailing padding is trimmed.
func Align(rows [][]string, sep string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, sep), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// SideBySide prints two blocks next to each other, padding the left block to
// its widest line plus padding cells.
func (p *Printer) SideBySide(left string, right []string, padding int) {
	leftLines := strings.Split(strings.TrimRight(left, "\n"), "\n")

	leftWidth := 0
	for _, line := range leftLines {
		if w := runewidth.StringWidth(line); w > leftWidth {
			leftWidth = w
		}
	}

	height := len(leftLines)
	if len(right) > height {
		height = len(right)
	}
	for i := 0; i < height; i++ {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(right) {
			r = right[i]
		}
		if r == "" {
			fmt.Fprintln(p.w, l)
			continue
		}
		fmt.Fprintln(p.w, runewidth.FillRight(l, leftWidth+padding)+r)
	}
}

func (p *Printer) verdict(equivalent bool) string {
	if equivalent {
		return p.paint(color.Green, "EQUIVALENT")
	}
	return p.paint(color.Red, "NOT EQUIVALENT")
}

// Verdict prints the outcome of one comparison and its diagnostics.
func (p *Printer) Verdict(res *compare.Result) {
	fmt.Fprintln(p.w, p.verdict(res.Equivalent))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(p.w, "  - %s\n", d)
	}
}

// Batch prints one aligned line per pair followed by the diagnostics of the
// pairs that differ.
func (p *Printer) Batch(results []compare.PairResult) {
	rows := [][]string{{"PAIR", "VERDICT", "DIFFERENCES"}}
	equivalent := 0
	for _, r := range results {
		v := "EQUIVALENT"
		switch {
		case r.Err != nil:
			v = "PARSE FAILURE"
		case !r.Result.Equivalent:
			v = "NOT EQUIVALENT"
		default:
			equivalent++
		}
		rows = append(rows, []string{r.Name, v, fmt.Sprint(len(r.Result.Diagnostics))})
	}
	p.Table(rows)

	for _, r := range results {
		if r.Result.Equivalent {
			continue
		}
		fmt.Fprintln(p.w)
		p.Section(r.Name)
		for _, d := range r.Result.Diagnostics {
			fmt.Fprintf(p.w, "  - %s\n", d)
		}
	}

	fmt.Fprintln(p.w)
	summary := fmt.Sprintf("%d of %d pairs equivalent", equivalent, len(results))
	if equivalent == len(results) {
		summary = p.paint(color.Green, summary)
	} else {
		summary = p.paint(color.Yellow, summary)
	}
	fmt.Fprintln(p.w, summary)
}

// Partition prints every equivalence class with its members and the
// documents that failed to parse.
func (p *Printer) Partition(part *compare.Partition) {
	for i, class := range part.Classes {
		p.Section(fmt.Sprintf("Class %d (%d members)", i+1, len(class.Members)))
		for j, m := range class.Members {
			marker := " "
			if j == 0 {
				marker = "*"
			}
			fmt.Fprintf(p.w, "  %s %s\n", marker, m.Name)
		}
		fmt.Fprintln(p.w)
	}

	if len(part.Failed) > 0 {
		p.Section("Parse failures")
		for _, f := range part.Failed {
			fmt.Fprintf(p.w, "  %s: %s\n", p.paint(color.Red, f.Document.Name), f.Err)
		}
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "%d classes, %d failures\n", len(part.Classes), len(part.Failed))
}

// Diagnostics prints diagnostics as an aligned kind/subject/message table.
func (p *Printer) Diagnostics(list diag.List) {
	if list.Empty() {
		fmt.Fprintln(p.w, p.paint(color.Green, "no findings"))
		return
	}
	rows := [][]string{{"KIND", "SUBJECT", "MESSAGE"}}
	for _, d := range list {
		subject := d.Subject
		if subject == "" {
			subject = "-"
		}
		rows = append(rows, []string{string(d.Kind), subject, d.Message})
	}
	p.Table(rows)
}

// Graph prints the tables of an ER graph with their kinds and keys, then its
// relationships.
func (p *Printer) Graph(g *erd.Graph) {
	p.Section("Entities")
	rows := [][]string{{"TABLE", "KIND", "KEY", "PARENTS"}}
	for _, t := range g.Tables {
		var key []string
		for _, c := range t.Columns {
			if c.Role.IsKey() {
				key = append(key, c.Name)
			}
		}
		rows = append(rows, []string{t.Name, string(t.Kind), strings.Join(key, ", "), strings.Join(t.Parents, ", ")})
	}
	p.Table(rows)

	fmt.Fprintln(p.w)
	p.Section("Relationships")
	if len(g.Relationships) == 0 {
		fmt.Fprintln(p.w, "  (none)")
		return
	}
	rows = [][]string{{"CHILD", "PARENT", "CARDINALITY", "COLUMNS", "IDENTIFYING"}}
	for _, r := range g.Relationships {
		ident := "no"
		if r.Identifying {
			ident = "yes"
		}
		rows = append(rows, []string{r.Child, r.Parent, r.Label, strings.Join(r.Columns, ", "), ident})
	}
	p.Table(rows)
}
