package lexer

import (
	"testing"

	"github.com/paiml/ruchy-sub014/internal/token"
)

func TestTokenSpansCoverLexemes(t *testing.T) {
	src := `let x = 10 + 2.5
fun add(a, b) { a + b }
"hello" 'c' x..=3`
	l := New(src)
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.STRING || tok.Type == token.CHAR {
			// Quoted literals store the decoded text; the span starts at
			// the opening quote.
			if src[tok.Offset] != '"' && src[tok.Offset] != '\'' {
				t.Errorf("token %q: offset %d is not at a quote", tok.Lexeme, tok.Offset)
			}
			continue
		}
		end := tok.Offset + len(tok.Lexeme)
		if end > len(src) || src[tok.Offset:end] != tok.Lexeme {
			t.Errorf("token %q: span [%d,%d) covers %q", tok.Lexeme, tok.Offset, end, src[tok.Offset:end])
		}
	}
}

func TestKeywords(t *testing.T) {
	src := "let fun if else while for loop match return break continue actor receive spawn hook supervisor import export module throw try catch finally async await true false null unit"
	want := []token.Type{
		token.LET, token.FUN, token.IF, token.ELSE, token.WHILE, token.FOR,
		token.LOOP, token.MATCH, token.RETURN, token.BREAK, token.CONTINUE,
		token.ACTOR, token.RECEIVE, token.SPAWN, token.HOOK, token.SUPERVISOR,
		token.IMPORT, token.EXPORT, token.MODULE, token.THROW, token.TRY,
		token.CATCH, token.FINALLY, token.ASYNC, token.AWAIT, token.TRUE,
		token.FALSE, token.NULL, token.UNIT,
	}
	l := New(src)
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got type %v (%q), want %v", i, tok.Type, tok.Lexeme, w)
		}
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %q", tok.Lexeme)
	}
}

func TestOperators(t *testing.T) {
	cases := map[string]token.Type{
		"+": token.PLUS, "-": token.MINUS, "**": token.STARSTAR,
		"==": token.EQ, "!=": token.NE, "<=": token.LE, ">=": token.GE,
		"&&": token.AND, "||": token.OR, "<<": token.SHL, ">>": token.SHR,
		"..": token.DOTDOT, "..=": token.DOTDOTEQ, "<?": token.ASK,
		"?.": token.QDOT, "::": token.DCOLON, "=>": token.FATARROW,
		"->": token.ARROW, "++": token.INCR, "--": token.DECR,
		"+=": token.PLUSASSIGN, "!": token.BANG,
	}
	for src, want := range cases {
		l := New(src)
		tok := l.NextToken()
		if tok.Type != want {
			t.Errorf("%q: got type %v, want %v", src, tok.Type, want)
		}
	}
}

func TestNestedBlockComments(t *testing.T) {
	l := New("/* outer /* inner */ still outer */ 42")
	tok := l.NextToken()
	if tok.Type != token.INT || tok.Lexeme != "42" {
		t.Fatalf("got %v %q, want INT 42", tok.Type, tok.Lexeme)
	}
}

func TestLineComments(t *testing.T) {
	l := New("// comment\n7")
	tok := l.NextToken()
	if tok.Type != token.INT || tok.Lexeme != "7" {
		t.Fatalf("got %v %q, want INT 7", tok.Type, tok.Lexeme)
	}
	if tok.Line != 2 {
		t.Errorf("line = %d, want 2", tok.Line)
	}
}

func TestStringEscapes(t *testing.T) {
	cases := map[string]string{
		`"a\nb"`:      "a\nb",
		`"tab\there"`: "tab\there",
		`"q\"q"`:      `q"q`,
		`"\x41"`:      "A",
		`"\u{1F600}"`: "\U0001F600",
	}
	for src, want := range cases {
		l := New(src)
		tok := l.NextToken()
		if tok.Type != token.STRING || tok.Lexeme != want {
			t.Errorf("%s: got %q, want %q", src, tok.Lexeme, want)
		}
	}
}

func TestNumericSuffix(t *testing.T) {
	l := New("10i64 2.5f32 1_000")
	tok := l.NextToken()
	if tok.Type != token.INT || tok.Lexeme != "10i64" {
		t.Fatalf("got %v %q", tok.Type, tok.Lexeme)
	}
	v, suffix, err := ParseIntLiteral(tok.Lexeme)
	if err != nil || v != 10 || suffix != "i64" {
		t.Fatalf("ParseIntLiteral = %d %q %v", v, suffix, err)
	}
	tok = l.NextToken()
	if tok.Type != token.FLOAT || tok.Lexeme != "2.5f32" {
		t.Fatalf("got %v %q", tok.Type, tok.Lexeme)
	}
	tok = l.NextToken()
	v, _, err = ParseIntLiteral(tok.Lexeme)
	if err != nil || v != 1000 {
		t.Fatalf("underscored int = %d %v", v, err)
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	l := New("π = 3")
	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Lexeme != "π" {
		t.Fatalf("got %v %q", tok.Type, tok.Lexeme)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("$")
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("got %v, want ILLEGAL", tok.Type)
	}
}
