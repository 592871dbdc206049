package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/erdsql/internal/compare"
	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/diag"
	"github.com/dbsmedya/erdsql/internal/erd"
)

func TestAlign(t *testing.T) {
	out := Align([][]string{
		{"NAME", "KIND"},
		{"student", "strong"},
		{"学生", "weak"},
	}, " | ")

	expected := "NAME    | KIND\n" +
		"student | strong\n" +
		"学生    | weak\n"
	assert.Equal(t, expected, out)
}

func TestAlign_RaggedRows(t *testing.T) {
	out := Align([][]string{{"a", "bb", "c"}, {"aaa"}}, " ")
	assert.Equal(t, "a   bb c\naaa\n", out)
}

func TestHeaderAndSection(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)
	p.Header("Check %s", "erd.drawio")
	p.Section("Tables")

	expected := "====================\n" +
		"  Check erd.drawio\n" +
		"====================\n" +
		"[Tables]\n" +
		"--------\n"
	assert.Equal(t, expected, buf.String())
}

func TestSideBySide(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).SideBySide("ab\nabcd\n", []string{"x", "", "z"}, 2)
	assert.Equal(t, "ab    x\nabcd\n      z\n", buf.String())
}

func TestVerdict(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Verdict(&compare.Result{Equivalent: true})
	p.Verdict(&compare.Result{Diagnostics: []string{"table a only in schema1"}})

	assert.Equal(t, "EQUIVALENT\nNOT EQUIVALENT\n  - table a only in schema1\n", buf.String())
}

func TestBatch(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Batch([]compare.PairResult{
		{Name: "q1", Result: &compare.Result{Equivalent: true}},
		{Name: "question-2", Result: &compare.Result{Diagnostics: []string{"table t: columns only in schema1: x"}}},
		{Name: "q3", Result: &compare.Result{Diagnostics: []string{"parse failure: boom"}}, Err: errors.New("boom")},
	})

	expected := "PAIR        VERDICT         DIFFERENCES\n" +
		"q1          EQUIVALENT      0\n" +
		"question-2  NOT EQUIVALENT  1\n" +
		"q3          PARSE FAILURE   1\n" +
		"\n" +
		"[question-2]\n" +
		"------------\n" +
		"  - table t: columns only in schema1: x\n" +
		"\n" +
		"[q3]\n" +
		"----\n" +
		"  - parse failure: boom\n" +
		"\n" +
		"1 of 3 pairs equivalent\n"
	assert.Equal(t, expected, buf.String())
}

func TestPartition(t *testing.T) {
	part := compare.New(compare.Options{}).Partition([]compare.Document{
		{Name: "a.sql", SQL: "CREATE TABLE t (x INT)"},
		{Name: "b.sql", SQL: "CREATE TABLE u (x INT)"},
		{Name: "c.sql", SQL: "create table T (X text)"},
		{Name: "d.sql", SQL: "CREATE TABLE t (x INT"},
	})

	var buf bytes.Buffer
	New(&buf, false).Partition(part)

	out := buf.String()
	assert.Contains(t, out, "[Class 1 (2 members)]\n")
	assert.Contains(t, out, "  * a.sql\n    c.sql\n")
	assert.Contains(t, out, "[Class 2 (1 members)]\n")
	assert.Contains(t, out, "[Parse failures]\n")
	assert.Contains(t, out, "  d.sql: ")
	assert.Contains(t, out, "2 classes, 1 failures\n")
}

func TestDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Diagnostics(nil)
	assert.Equal(t, "no findings\n", buf.String())

	buf.Reset()
	var list diag.List
	list.Add(diag.StructuralAnomaly, "log", "table has no primary key")
	list.Add(diag.StructuralAnomaly, "", "foreign key cycle: a -> b -> a")
	p.Diagnostics(list)

	expected := "KIND                SUBJECT  MESSAGE\n" +
		"structural-anomaly  log      table has no primary key\n" +
		"structural-anomaly  -        foreign key cycle: a -> b -> a\n"
	assert.Equal(t, expected, buf.String())
}

func TestGraph(t *testing.T) {
	g := erd.FromSchema(ddl.MustParse(`
CREATE TABLE building (id INT PRIMARY KEY);
CREATE TABLE room (building_id INT REFERENCES building(id), nr INT, PRIMARY KEY (building_id, nr));
`))

	var buf bytes.Buffer
	New(&buf, false).Graph(g)

	expected := "[Entities]\n" +
		"----------\n" +
		"TABLE     KIND    KEY              PARENTS\n" +
		"building  strong  id\n" +
		"room      weak    building_id, nr  building\n" +
		"\n" +
		"[Relationships]\n" +
		"---------------\n" +
		"CHILD  PARENT    CARDINALITY  COLUMNS      IDENTIFYING\n" +
		"room   building  N:1          building_id  yes\n"
	assert.Equal(t, expected, buf.String())
}

func TestColoredOutput(t *testing.T) {
	var plain, colored bytes.Buffer
	New(&plain, false).Verdict(&compare.Result{Equivalent: true})
	New(&colored, true).Verdict(&compare.Result{Equivalent: true})
	assert.Contains(t, colored.String(), "EQUIVALENT")
	assert.Equal(t, "EQUIVALENT\n", plain.String())
}
