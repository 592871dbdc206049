package sqlutil

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenWord   TokenKind = iota // bare identifier or keyword
	TokenQuoted                  // quoted identifier, Text holds the unquoted name
	TokenString                  // single-quoted literal, Text keeps the quotes
	TokenNumber                  // numeric literal
	TokenSymbol                  // punctuation and operators
)

// Token is a single lexical token of SQL text.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Pos  int // rune offset of the first character in the source
	End  int // rune offset just past the last character
}

// Is reports whether the token is the bare word w (case-insensitive).
func (t Token) Is(w string) bool {
	return t.Kind == TokenWord && strings.EqualFold(t.Text, w)
}

// IsSymbol reports whether the token is the symbol s.
func (t Token) IsSymbol(s string) bool {
	return t.Kind == TokenSymbol && t.Text == s
}

// IsName reports whether the token can name a table or column.
func (t Token) IsName() bool {
	return t.Kind == TokenWord || t.Kind == TokenQuoted
}

// Upper returns the upper-cased text of a word token.
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// ScanError reports malformed SQL text, such as an unterminated literal.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var twoCharSymbols = map[string]bool{
	"<=": true, ">=": true, "<>": true, "!=": true, "||": true, "::": true,
}

// Tokenize splits SQL text into tokens. Comments (--, # and /* */) and
// whitespace are dropped. Backtick, double-quote and bracket quoting is
// removed from identifiers.
func Tokenize(src string) ([]Token, error) {
	var tokens []Token
	runes := []rune(src)
	line := 1
	i := 0

	for i < len(runes) {
		r := runes[i]
		begin := i

		switch {
		case r == '\n':
			line++
			i++

		case unicode.IsSpace(r):
			i++

		case r == '-' && i+1 < len(runes) && runes[i+1] == '-', r == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}

		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			start := line
			i += 2
			for {
				if i+1 >= len(runes) {
					return nil, &ScanError{Line: start, Message: "unterminated block comment"}
				}
				if runes[i] == '\n' {
					line++
				}
				if runes[i] == '*' && runes[i+1] == '/' {
					i += 2
					break
				}
				i++
			}

		case r == '\'':
			start := line
			var b strings.Builder
			b.WriteRune(r)
			i++
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '\n' {
					line++
				}
				b.WriteRune(c)
				i++
				if c == '\'' {
					if i < len(runes) && runes[i] == '\'' {
						b.WriteRune('\'')
						i++
						continue
					}
					closed = true
					break
				}
			}
			if !closed {
				return nil, &ScanError{Line: start, Message: "unterminated string literal"}
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: b.String(), Line: start, Pos: begin, End: i})

		case r == '"' || r == '`' || r == '[':
			closer := r
			if r == '[' {
				closer = ']'
			}
			start := line
			var b strings.Builder
			i++
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '\n' {
					line++
				}
				i++
				if c == closer {
					if closer != ']' && i < len(runes) && runes[i] == closer {
						b.WriteRune(c)
						i++
						continue
					}
					closed = true
					break
				}
				b.WriteRune(c)
			}
			if !closed {
				return nil, &ScanError{Line: start, Message: "unterminated quoted identifier"}
			}
			tokens = append(tokens, Token{Kind: TokenQuoted, Text: b.String(), Line: start, Pos: begin, End: i})

		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			// Identifiers may start with digits in MySQL (e.g. 3d_model).
			if j < len(runes) && isWordRune(runes[j]) {
				for j < len(runes) && isWordRune(runes[j]) {
					j++
				}
				tokens = append(tokens, Token{Kind: TokenWord, Text: string(runes[i:j]), Line: line, Pos: begin, End: j})
			} else {
				tokens = append(tokens, Token{Kind: TokenNumber, Text: string(runes[i:j]), Line: line, Pos: begin, End: j})
			}
			i = j

		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenWord, Text: string(runes[i:j]), Line: line, Pos: begin, End: j})
			i = j

		default:
			if i+1 < len(runes) && twoCharSymbols[string(runes[i:i+2])] {
				tokens = append(tokens, Token{Kind: TokenSymbol, Text: string(runes[i : i+2]), Line: line, Pos: begin, End: i + 2})
				i += 2
				continue
			}
			tokens = append(tokens, Token{Kind: TokenSymbol, Text: string(r), Line: line, Pos: begin, End: i + 1})
			i++
		}
	}

	return tokens, nil
}

// Source returns the text of src spanned by tokens, from the first token to
// the last, with the original quoting, spacing and comments in between.
// tokens must come from Tokenize(src).
func Source(src string, tokens []Token) string {
	if len(tokens) == 0 {
		return ""
	}
	runes := []rune(src)
	first, last := tokens[0].Pos, tokens[len(tokens)-1].End
	if first < 0 || last > len(runes) || first > last {
		return ""
	}
	return string(runes[first:last])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// SplitStatements splits a token stream on top-level semicolons. A CREATE
// keyword at the top level also starts a new statement, which recovers from
// a missing semicolon between two definitions. Empty statements are dropped.
func SplitStatements(tokens []Token) [][]Token {
	var stmts [][]Token
	var cur []Token
	depth := 0
	for _, t := range tokens {
		switch {
		case t.IsSymbol("("):
			depth++
		case t.IsSymbol(")"):
			if depth > 0 {
				depth--
			}
		case t.IsSymbol(";") && depth == 0:
			if len(cur) > 0 {
				stmts = append(stmts, cur)
			}
			cur = nil
			continue
		case t.Is("CREATE") && depth == 0 && len(cur) > 0:
			stmts = append(stmts, cur)
			cur = nil
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		stmts = append(stmts, cur)
	}
	return stmts
}

// SplitTopLevel splits tokens on commas that are not nested in parentheses.
func SplitTopLevel(tokens []Token) [][]Token {
	var parts [][]Token
	var cur []Token
	depth := 0
	for _, t := range tokens {
		switch {
		case t.IsSymbol("("):
			depth++
		case t.IsSymbol(")"):
			if depth > 0 {
				depth--
			}
		case t.IsSymbol(",") && depth == 0:
			parts = append(parts, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 || len(parts) > 0 {
		parts = append(parts, cur)
	}
	return parts
}

// MatchingParen returns the index of the parenthesis closing the one at open,
// or -1 when it is unbalanced.
func MatchingParen(tokens []Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch {
		case tokens[i].IsSymbol("("):
			depth++
		case tokens[i].IsSymbol(")"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Render joins tokens back into text with canonical spacing: one space
// between tokens, none before "," ")" "." or after "(" ".".
func Render(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			noSpace := t.IsSymbol(",") || t.IsSymbol(")") || t.IsSymbol(".") ||
				prev.IsSymbol("(") || prev.IsSymbol(".")
			if !noSpace {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tokenText(t))
	}
	return b.String()
}

func tokenText(t Token) string {
	if t.Kind == TokenQuoted {
		return FormatIdentifier(t.Text)
	}
	return t.Text
}
