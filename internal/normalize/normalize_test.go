package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Quoting and types",
			input:    "CREATE TABLE `Student` (`id` int(11) NOT NULL, \"name\" varchar(50));",
			expected: "CREATE TABLE Student (id INTEGER NOT NULL, name TEXT);",
		},
		{
			name: "Comments and whitespace",
			input: `-- generated
CREATE TABLE dept (
    /* surrogate */ dept_id   INT    primary key,
    budget DECIMAL(10, 2) # money
);`,
			expected: "CREATE TABLE dept (dept_id INTEGER PRIMARY KEY, budget REAL);",
		},
		{
			name: "Missing commas before constraints",
			input: `CREATE TABLE enrollment (
    student_id TEXT,
    course_id TEXT,
    grade TEXT
    primary key (student_id, course_id)
    foreign key (student_id) references student(student_id)
    CONSTRAINT fk_c FOREIGN KEY (course_id) REFERENCES course(course_id)
)`,
			expected: "CREATE TABLE enrollment (student_id TEXT, course_id TEXT, grade TEXT, PRIMARY KEY (student_id, course_id), " +
				"FOREIGN KEY (student_id) REFERENCES student(student_id), " +
				"CONSTRAINT fk_c FOREIGN KEY (course_id) REFERENCES course(course_id));",
		},
		{
			name:     "Table level keys",
			input:    "CREATE TABLE s (id INT, t_id INT, PRIMARY KEY (id), FOREIGN KEY (t_id) REFERENCES t(id));",
			expected: "CREATE TABLE s (id INTEGER, t_id INTEGER, PRIMARY KEY (id), FOREIGN KEY (t_id) REFERENCES t(id));",
		},
		{
			name:     "Named primary key",
			input:    "CREATE TABLE s (id INT, CONSTRAINT pk_s PRIMARY KEY (id))",
			expected: "CREATE TABLE s (id INTEGER, CONSTRAINT pk_s PRIMARY KEY (id));",
		},
		{
			name:     "MySQL named foreign key",
			input:    "CREATE TABLE s (t_id INT, FOREIGN KEY fk_t (t_id) REFERENCES t (id))",
			expected: "CREATE TABLE s (t_id INTEGER, FOREIGN KEY (t_id) REFERENCES t(id));",
		},
		{
			name:     "Timestamp folds to text",
			input:    "create table log (at TIMESTAMP WITH TIME ZONE default now(), d DATE)",
			expected: "CREATE TABLE log (at TEXT DEFAULT now(), d TEXT);",
		},
		{
			name:     "MySQL index lines and table options",
			input:    "CREATE TABLE t (a INT, b BLOB, KEY idx_a (a), UNIQUE KEY uk_b (b(20))) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
			expected: "CREATE TABLE t (a INTEGER, b BLOB, UNIQUE (b));",
		},
		{
			name:     "Identifier that needs quotes",
			input:    "CREATE TABLE [Order Line] ([Line No] INT)",
			expected: `CREATE TABLE "Order Line" ("Line No" INTEGER);`,
		},
		{
			name:     "Other statements kept on their own line",
			input:    "insert into t values (1,'a');create table t (a bool)",
			expected: "insert into t values (1, 'a');\nCREATE TABLE t (a BOOLEAN);",
		},
		{
			name:     "Missing semicolon between tables",
			input:    "CREATE TABLE a (x INT)\nCREATE TABLE b (y INT)",
			expected: "CREATE TABLE a (x INTEGER);\nCREATE TABLE b (y INTEGER);",
		},
		{
			name:     "Empty input",
			input:    "  -- nothing here\n",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"CREATE TABLE `a` (`x` varchar(10) not null default 'q', y numeric(5,2) check (y > 0), PRIMARY KEY (`x`));",
		"CREATE TABLE b (id SERIAL PRIMARY KEY, a_x TEXT REFERENCES a(x) on delete set null)\nCREATE TABLE c (z int)",
		"CREATE TABLE [Weird Name] ([Col 1] INT, \"Col\"\"2\" TEXT); SELECT * FROM x WHERE a <= 3;",
		"CREATE TABLE e (s TEXT COLLATE nocase, t TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)",
	}

	for _, in := range inputs {
		once, err := Normalize(in)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input: %s", in)
	}
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize("CREATE TABLE t (a TEXT DEFAULT 'oops)")
	require.Error(t, err)

	_, err = Normalize("CREATE TABLE t (a INT")
	require.Error(t, err)
	assert.ErrorIs(t, err, ddl.ErrParse)
}

func TestFoldType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int(11)", TypeInteger},
		{"BIGINT UNSIGNED", TypeInteger},
		{"serial", TypeInteger},
		{"DECIMAL (10, 2)", TypeReal},
		{"double precision", TypeReal},
		{"VARCHAR(255)", TypeText},
		{"character varying(20)", TypeText},
		{"datetime", TypeText},
		{"timestamp with time zone", TypeText},
		{"longblob", TypeBlob},
		{"boolean", TypeBoolean},
		{"geometry", "GEOMETRY"},
		{"", ""},
		{"TEXT", TypeText},
		{"INTEGER", TypeInteger},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FoldType(tt.input))
			assert.Equal(t, FoldType(tt.input), FoldType(FoldType(tt.input)))
		})
	}
}

func TestExtractCreateTables(t *testing.T) {
	in := `CREATE TABLE a (x INT);
INSERT INTO a VALUES (1);
-- query
SELECT * FROM a;
CREATE TEMPORARY TABLE b (y TEXT);`

	got, err := ExtractCreateTables(in)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE a (x INT);\nCREATE TEMPORARY TABLE b (y TEXT);", got)
}

func TestExtractCreateTables_KeepsSourceText(t *testing.T) {
	in := "CREATE TABLE `Student` (\n  `id` int(11) NOT NULL\n);\nINSERT INTO `Student` VALUES (1);"

	got, err := ExtractCreateTables(in)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `Student` (\n  `id` int(11) NOT NULL\n);", got)
}

func TestRepairCommas(t *testing.T) {
	tokens, err := sqlutil.Tokenize("CREATE TABLE t (a INT UNIQUE, b INT UNIQUE KEY, c INT PRIMARY KEY\nUNIQUE (a, b))")
	require.NoError(t, err)

	got := sqlutil.Render(RepairCommas(tokens))
	assert.Equal(t, "CREATE TABLE t (a INT UNIQUE, b INT UNIQUE KEY, c INT PRIMARY KEY, UNIQUE (a, b))", got)
}

func TestRepairCommas_KeepsKeyWithItsConstraint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "primary and foreign key",
			input:    "CREATE TABLE t (a INT, PRIMARY KEY (a), FOREIGN KEY (a) REFERENCES p(id))",
			expected: "CREATE TABLE t (a INT, PRIMARY KEY (a), FOREIGN KEY (a) REFERENCES p (id))",
		},
		{
			name:     "named constraint",
			input:    "CREATE TABLE t (a INT CONSTRAINT pk PRIMARY KEY (a))",
			expected: "CREATE TABLE t (a INT, CONSTRAINT pk PRIMARY KEY (a))",
		},
		{
			name:     "unique key with index name",
			input:    "CREATE TABLE t (a INT, UNIQUE KEY uk_a (a))",
			expected: "CREATE TABLE t (a INT, UNIQUE KEY uk_a (a))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := sqlutil.Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sqlutil.Render(RepairCommas(tokens)))
		})
	}
}
