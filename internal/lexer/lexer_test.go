package lexer

import "testing"

// TestLexer checks that a short representative program is tokenized in
// order, matching vslc's lexer_test.go table-driven shape.
func TestLexer(t *testing.T) {
	src := `function square(x: Number): Number => x * x;
let a = 1, b = "hi" in print(a);`

	exp := []struct {
		typ TokenType
		val string
	}{
		{FUNCTION, ""},
		{IDENT, "square"},
		{LPAREN, ""},
		{IDENT, "x"},
		{COLON, ""},
		{IDENT, "Number"},
		{RPAREN, ""},
		{COLON, ""},
		{IDENT, "Number"},
		{ARROW, ""},
		{IDENT, "x"},
		{STAR, ""},
		{IDENT, "x"},
		{SEMI, ""},
		{LET, ""},
		{IDENT, "a"},
		{ASSIGN, ""},
		{NUMBER, "1"},
		{COMMA, ""},
		{IDENT, "b"},
		{ASSIGN, ""},
		{STRING, "hi"},
		{IN, ""},
		{PRINT, ""},
		{LPAREN, ""},
		{IDENT, "a"},
		{RPAREN, ""},
		{SEMI, ""},
	}

	l := New(src)
	for i, want := range exp {
		tok := l.Next()
		if tok.Type != want.typ {
			t.Fatalf("token %d: expected type %s, got %s (%q)", i, want.typ, tok.Type, tok.Val)
		}
		if want.val != "" && tok.Val != want.val {
			t.Errorf("token %d: expected value %q, got %q", i, want.val, tok.Val)
		}
	}
	if final := l.Next(); final.Type != EOF {
		t.Errorf("expected EOF after program, got %s", final.Type)
	}
}

func TestLexerKeywordsVsIdents(t *testing.T) {
	l := New("self base new while for type inherits elif")
	want := []TokenType{SELF, BASE, NEW, WHILE, FOR, TYPE, INHERITS, ELIF}
	for i, w := range want {
		if tok := l.Next(); tok.Type != w {
			t.Errorf("token %d: expected %s, got %s", i, w, tok.Type)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	l := New(`"a\nb"`)
	tok := l.Next()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Val != "a\nb" {
		t.Errorf("expected unescaped %q, got %q", "a\nb", tok.Val)
	}
}
