package lexer

import "testing"

func collectTypes(src string) []TokenType {
	l := New("t.py", Normalize([]byte(src)))
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			return types
		}
	}
}

func TestSimpleAssignment(t *testing.T) {
	types := collectTypes("x: int = 1\n")
	want := []TokenType{IDENT, COLON, IDENT, ASSIGN, INT, NEWLINE, EOF}
	assertTypes(t, types, want)
}

func TestIndentDedent(t *testing.T) {
	src := "def f(x: int) -> int:\n    return x\ny = 1\n"
	types := collectTypes(src)
	want := []TokenType{
		DEF, IDENT, LPAREN, IDENT, COLON, IDENT, RPAREN, ARROW, IDENT, COLON, NEWLINE,
		INDENT, RETURN, IDENT, NEWLINE,
		DEDENT, IDENT, ASSIGN, INT, NEWLINE, EOF,
	}
	assertTypes(t, types, want)
}

func TestNestedBlocks(t *testing.T) {
	src := "if a:\n    if b:\n        pass\n    pass\n"
	types := collectTypes(src)
	want := []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT, IF, IDENT, COLON, NEWLINE,
		INDENT, PASS, NEWLINE,
		DEDENT, PASS, NEWLINE,
		DEDENT, EOF,
	}
	assertTypes(t, types, want)
}

func TestBracketsSuppressNewline(t *testing.T) {
	src := "x = [1,\n2,\n3]\n"
	types := collectTypes(src)
	want := []TokenType{
		IDENT, ASSIGN, LBRACKET, INT, COMMA, INT, COMMA, INT, RBRACKET, NEWLINE, EOF,
	}
	assertTypes(t, types, want)
}

func TestKeywordsAndOperators(t *testing.T) {
	src := "a and b or not c\nd += 1\ne == f != g\n"
	types := collectTypes(src)
	want := []TokenType{
		IDENT, AND, IDENT, OR, NOT, IDENT, NEWLINE,
		IDENT, PLUSEQ, INT, NEWLINE,
		IDENT, EQ, IDENT, NEQ, IDENT, NEWLINE,
		EOF,
	}
	assertTypes(t, types, want)
}

func TestStringLiteralEscapes(t *testing.T) {
	l := New("t.py", Normalize([]byte(`"a\nb"` + "\n")))
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "a\nb" {
		t.Fatalf("got %#v", tok)
	}
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	l := New("t.py", []byte(`"abc`))
	_ = TokenizeAll(l)
	if len(l.Errors()) == 0 {
		t.Fatalf("expected an error for unterminated string")
	}
}

func assertTypes(t *testing.T, got, want []TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}
