package ddl

import (
	"errors"
	"fmt"

	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

// ErrParse is matched by every error returned from Parse.
var ErrParse = errors.New("failed to parse SQL")

// ParseError reports malformed DDL.
type ParseError struct {
	Line    int
	Table   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("line %d: table %s: %s", e.Line, e.Table, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Unwrap lets errors.Is match ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Parse parses every CREATE TABLE statement in src. Other statements are
// skipped. Comments directly preceding a CREATE TABLE are not kept; use
// Table.Comments on constructed schemas instead.
func Parse(src string) (*Schema, error) {
	tokens, err := sqlutil.Tokenize(src)
	if err != nil {
		var scanErr *sqlutil.ScanError
		if errors.As(err, &scanErr) {
			return nil, &ParseError{Line: scanErr.Line, Message: scanErr.Message}
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	schema := &Schema{}
	for _, stmt := range sqlutil.SplitStatements(tokens) {
		if !isCreateTable(stmt) {
			continue
		}
		t, err := parseCreateTable(stmt)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, t)
	}
	return schema, nil
}

// isCreateTable matches CREATE [TEMP|TEMPORARY] TABLE.
func isCreateTable(stmt []token) bool {
	if len(stmt) < 2 || !stmt[0].Is("CREATE") {
		return false
	}
	i := 1
	if stmt[i].Is("TEMP") || stmt[i].Is("TEMPORARY") {
		i++
	}
	return i < len(stmt) && stmt[i].Is("TABLE")
}

// token is shorthand for sqlutil.Token.
type token = sqlutil.Token

type cursor struct {
	toks  []token
	pos   int
	table string
}

func (c *cursor) done() bool { return c.pos >= len(c.toks) }

func (c *cursor) peek() token {
	if c.done() {
		return token{}
	}
	return c.toks[c.pos]
}

func (c *cursor) peekAt(n int) token {
	if c.pos+n >= len(c.toks) {
		return token{}
	}
	return c.toks[c.pos+n]
}

func (c *cursor) next() token {
	t := c.peek()
	c.pos++
	return t
}

func (c *cursor) line() int {
	if c.done() {
		if len(c.toks) == 0 {
			return 0
		}
		return c.toks[len(c.toks)-1].Line
	}
	return c.toks[c.pos].Line
}

func (c *cursor) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: c.line(), Table: c.table, Message: fmt.Sprintf(format, args...)}
}

// accept consumes the word sequence if it is next.
func (c *cursor) accept(words ...string) bool {
	for i, w := range words {
		if !c.peekAt(i).Is(w) {
			return false
		}
	}
	c.pos += len(words)
	return true
}

func (c *cursor) expectSymbol(s string) error {
	if !c.peek().IsSymbol(s) {
		return c.errorf("expected %q, found %q", s, c.peek().Text)
	}
	c.pos++
	return nil
}

// name reads a possibly qualified identifier and returns its last part.
func (c *cursor) name() (string, error) {
	t := c.peek()
	if !t.IsName() {
		return "", c.errorf("expected identifier, found %q", t.Text)
	}
	c.pos++
	n := t.Text
	for c.peek().IsSymbol(".") && c.peekAt(1).IsName() {
		c.pos++
		n = c.next().Text
	}
	return n, nil
}

// nameList reads "(a, b, c)". Index prefix lengths and sort order are
// dropped, e.g. "(name(10) DESC)" yields ["name"].
func (c *cursor) nameList() ([]string, error) {
	if err := c.expectSymbol("("); err != nil {
		return nil, err
	}
	end := sqlutil.MatchingParen(c.toks, c.pos-1)
	if end < 0 {
		return nil, c.errorf("unbalanced parentheses")
	}

	var names []string
	for _, part := range sqlutil.SplitTopLevel(c.toks[c.pos:end]) {
		if len(part) == 0 || !part[0].IsName() {
			return nil, c.errorf("expected column name in list")
		}
		names = append(names, part[0].Text)
	}
	c.pos = end + 1
	return names, nil
}

// group returns the text of a parenthesized group starting at the cursor.
func (c *cursor) group() (string, error) {
	if !c.peek().IsSymbol("(") {
		return "", c.errorf("expected \"(\", found %q", c.peek().Text)
	}
	end := sqlutil.MatchingParen(c.toks, c.pos)
	if end < 0 {
		return "", c.errorf("unbalanced parentheses")
	}
	text := sqlutil.Render(c.toks[c.pos : end+1])
	c.pos = end + 1
	return text, nil
}

func parseCreateTable(stmt []token) (*Table, error) {
	c := &cursor{toks: stmt}
	c.accept("CREATE")
	c.accept("TEMPORARY")
	c.accept("TEMP")
	c.accept("TABLE")
	c.accept("IF", "NOT", "EXISTS")

	name, err := c.name()
	if err != nil {
		return nil, err
	}
	c.table = name

	if c.accept("AS") || c.accept("LIKE") {
		return nil, c.errorf("CREATE TABLE ... AS/LIKE is not supported")
	}
	if !c.peek().IsSymbol("(") {
		return nil, c.errorf("expected column list, found %q", c.peek().Text)
	}
	end := sqlutil.MatchingParen(c.toks, c.pos)
	if end < 0 {
		return nil, c.errorf("unbalanced parentheses in table body")
	}

	t := &Table{Name: name}
	for _, part := range sqlutil.SplitTopLevel(c.toks[c.pos+1 : end]) {
		if len(part) == 0 {
			return nil, c.errorf("empty table element")
		}
		el, err := parseElement(&cursor{toks: part, table: name})
		if err != nil {
			return nil, err
		}
		if el != nil {
			t.Elements = append(t.Elements, el)
		}
	}
	if len(t.Elements) == 0 {
		return nil, c.errorf("table has no columns")
	}
	return t, nil
}

func parseElement(c *cursor) (Element, error) {
	var constraintName string
	if c.accept("CONSTRAINT") {
		if c.peek().IsName() && !isTableConstraintStart(c.peek()) {
			constraintName = c.next().Text
		}
	}

	switch {
	case c.accept("PRIMARY", "KEY"):
		skipIndexName(c)
		cols, err := c.nameList()
		if err != nil {
			return nil, err
		}
		return &PrimaryKey{Name: constraintName, Columns: cols}, nil

	case c.accept("FOREIGN", "KEY"):
		skipIndexName(c)
		cols, err := c.nameList()
		if err != nil {
			return nil, err
		}
		fk := &ForeignKey{Name: constraintName, Columns: cols}
		if !c.accept("REFERENCES") {
			return nil, c.errorf("expected REFERENCES after FOREIGN KEY")
		}
		if fk.RefTable, fk.RefColumns, err = references(c); err != nil {
			return nil, err
		}
		fk.OnDelete, fk.OnUpdate = referentialActions(c)
		return fk, nil

	case c.peek().Is("UNIQUE"):
		c.next()
		if !c.accept("KEY") {
			c.accept("INDEX")
		}
		skipIndexName(c)
		cols, err := c.nameList()
		if err != nil {
			return nil, err
		}
		return &Unique{Name: constraintName, Columns: cols}, nil

	case c.peek().Is("CHECK"):
		c.next()
		expr, err := c.group()
		if err != nil {
			return nil, err
		}
		return &Check{Name: constraintName, Expr: expr}, nil

	case constraintName == "" && isIndexLine(c):
		// MySQL secondary indexes carry no structural meaning here.
		return nil, nil
	}

	if constraintName != "" {
		return nil, c.errorf("unsupported constraint %q", constraintName)
	}
	return parseColumn(c)
}

func isTableConstraintStart(t token) bool {
	return t.Is("PRIMARY") || t.Is("FOREIGN") || t.Is("UNIQUE") || t.Is("CHECK")
}

func isIndexLine(c *cursor) bool {
	t := c.peek()
	if t.Is("FULLTEXT") || t.Is("SPATIAL") {
		return true
	}
	if !t.Is("KEY") && !t.Is("INDEX") {
		return false
	}
	return c.peekAt(1).IsSymbol("(") || (c.peekAt(1).IsName() && c.peekAt(2).IsSymbol("("))
}

// skipIndexName drops MySQL's optional index name before a column list.
func skipIndexName(c *cursor) {
	if c.peek().IsName() && c.peekAt(1).IsSymbol("(") {
		c.next()
	}
	if c.accept("USING") {
		c.next()
	}
}

func references(c *cursor) (string, []string, error) {
	table, err := c.name()
	if err != nil {
		return "", nil, err
	}
	var cols []string
	if c.peek().IsSymbol("(") {
		if cols, err = c.nameList(); err != nil {
			return "", nil, err
		}
	}
	return table, cols, nil
}

// referentialActions consumes ON DELETE/UPDATE clauses and MATCH/DEFERRABLE
// modifiers after a REFERENCES clause.
func referentialActions(c *cursor) (onDelete, onUpdate string) {
	for !c.done() {
		switch {
		case c.peek().Is("ON") && (c.peekAt(1).Is("DELETE") || c.peekAt(1).Is("UPDATE")):
			c.next()
			which := c.next().Upper()
			action := referentialAction(c)
			if which == "DELETE" {
				onDelete = action
			} else {
				onUpdate = action
			}
		case c.accept("MATCH"):
			c.next()
		case c.accept("NOT", "DEFERRABLE"), c.accept("DEFERRABLE"):
			if c.accept("INITIALLY") {
				c.next()
			}
		default:
			return onDelete, onUpdate
		}
	}
	return onDelete, onUpdate
}

func referentialAction(c *cursor) string {
	switch {
	case c.accept("SET", "NULL"):
		return "SET NULL"
	case c.accept("SET", "DEFAULT"):
		return "SET DEFAULT"
	case c.accept("NO", "ACTION"):
		return "NO ACTION"
	case c.accept("CASCADE"):
		return "CASCADE"
	case c.accept("RESTRICT"):
		return "RESTRICT"
	}
	return ""
}

// columnConstraintStart lists words that end a column's type.
var columnConstraintStart = map[string]bool{
	"NOT": true, "NULL": true, "PRIMARY": true, "UNIQUE": true, "DEFAULT": true,
	"CHECK": true, "REFERENCES": true, "CONSTRAINT": true, "AUTO_INCREMENT": true,
	"AUTOINCREMENT": true, "COLLATE": true, "COMMENT": true, "ON": true,
	"GENERATED": true, "AS": true, "KEY": true, "IDENTITY": true,
	"CHARACTER": true, "CHARSET": true,
}

func endsType(c *cursor) bool {
	p := c.peek()
	if p.Kind != sqlutil.TokenWord || !columnConstraintStart[p.Upper()] {
		return false
	}
	switch p.Upper() {
	case "CHARACTER":
		return c.peekAt(1).Is("SET")
	case "ON":
		return c.peekAt(1).Is("UPDATE")
	}
	return true
}

func parseColumn(c *cursor) (*Column, error) {
	t := c.peek()
	if !t.IsName() {
		return nil, c.errorf("expected column name, found %q", t.Text)
	}
	col := &Column{Name: c.next().Text}

	start := c.pos
	for !c.done() {
		if endsType(c) {
			break
		}
		p := c.peek()
		if p.IsSymbol("(") {
			end := sqlutil.MatchingParen(c.toks, c.pos)
			if end < 0 {
				return nil, c.errorf("unbalanced parentheses in type of %s", col.Name)
			}
			c.pos = end + 1
			continue
		}
		c.pos++
	}
	col.Type = sqlutil.Render(c.toks[start:c.pos])

	for !c.done() {
		cc, err := parseColumnConstraint(c)
		if err != nil {
			return nil, err
		}
		col.Constraints = append(col.Constraints, cc)
	}
	return col, nil
}

func parseColumnConstraint(c *cursor) (ColumnConstraint, error) {
	var cc ColumnConstraint
	if c.accept("CONSTRAINT") {
		if c.peek().IsName() {
			cc.Name = c.next().Text
		}
	}

	var err error
	switch {
	case c.accept("NOT", "NULL"):
		cc.Kind = ConstraintNotNull
	case c.accept("NULL"):
		cc.Kind = ConstraintNull
	case c.accept("PRIMARY", "KEY"):
		cc.Kind = ConstraintPrimaryKey
		if !c.accept("ASC") {
			c.accept("DESC")
		}
	case c.accept("KEY"):
		// MySQL shorthand for PRIMARY KEY in a column definition.
		cc.Kind = ConstraintPrimaryKey
	case c.accept("UNIQUE"):
		cc.Kind = ConstraintUnique
		c.accept("KEY")
	case c.accept("DEFAULT"):
		cc.Kind = ConstraintDefault
		cc.Expr, err = defaultExpr(c)
	case c.peek().Is("CHECK"):
		c.next()
		cc.Kind = ConstraintCheck
		cc.Expr, err = c.group()
	case c.accept("REFERENCES"):
		cc.Kind = ConstraintReferences
		if cc.RefTable, cc.RefColumns, err = references(c); err == nil {
			referentialActions(c)
		}
	case c.accept("AUTO_INCREMENT"), c.accept("AUTOINCREMENT"), c.accept("IDENTITY"):
		cc.Kind = ConstraintAutoIncrement
		if c.peek().IsSymbol("(") {
			_, err = c.group()
		}
	case c.accept("COLLATE"):
		cc.Kind = ConstraintCollate
		cc.Expr = c.next().Text
	case c.accept("CHARACTER", "SET"), c.accept("CHARSET"):
		cc.Kind = ConstraintCollate
		cc.Expr = c.next().Text
	case c.accept("COMMENT"):
		cc.Kind = ConstraintComment
		cc.Expr = c.next().Text
	case c.accept("ON", "UPDATE"):
		cc.Kind = ConstraintOnUpdate
		cc.Expr, err = defaultExpr(c)
	case c.accept("GENERATED", "ALWAYS", "AS"), c.accept("AS"):
		cc.Kind = ConstraintGenerated
		cc.Expr, err = c.group()
		if err == nil && !c.accept("STORED") {
			c.accept("VIRTUAL")
		}
	case c.peek().IsSymbol("("):
		cc.Kind = ConstraintOther
		cc.Expr, err = c.group()
	default:
		cc.Kind = ConstraintOther
		cc.Expr = c.next().Text
	}
	return cc, err
}

// defaultExpr reads a DEFAULT value: a literal, a signed number, a
// parenthesized expression or a function call.
func defaultExpr(c *cursor) (string, error) {
	if c.done() {
		return "", c.errorf("missing DEFAULT value")
	}
	if c.peek().IsSymbol("(") {
		return c.group()
	}

	sign := ""
	if c.peek().IsSymbol("-") || c.peek().IsSymbol("+") {
		sign = c.next().Text
	}
	if c.done() {
		return "", c.errorf("missing DEFAULT value")
	}
	value := sign + sqlutil.Render(c.toks[c.pos:c.pos+1])
	c.pos++
	if c.peek().IsSymbol("(") {
		args, err := c.group()
		if err != nil {
			return "", err
		}
		value += args
	}
	return value, nil
}

// MustParse is Parse for trusted inputs such as fixtures; it panics on error.
func MustParse(src string) *Schema {
	s, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("ddl.MustParse: %v", err))
	}
	return s
}
