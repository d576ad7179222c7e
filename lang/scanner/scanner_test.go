package scanner_test

import (
	"testing"

	"github.com/jaccomoc/jactl-sub011/lang/scanner"
	"github.com/jaccomoc/jactl-sub011/lang/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, token.ErrorList) {
	t.Helper()
	var errs token.ErrorList
	s := scanner.New(token.NewSource("test", []byte(src)), &errs)
	var toks []token.Token
	for {
		tk := s.Scan()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	return toks, errs
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"123", token.INT},
		{"123L", token.LONG},
		{"0x1F", token.INT},
		{"0b101", token.INT},
		{"1.5", token.DECIMAL},
		{"1.5D", token.DOUBLE},
		{"3D", token.DOUBLE},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			toks, errs := scanAll(t, c.src)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if toks[0].Kind != c.kind {
				t.Errorf("kind = %v, want %v", toks[0].Kind, c.kind)
			}
		})
	}
}

func TestScanIntOverflow(t *testing.T) {
	_, errs := scanAll(t, "99999999999")
	if len(errs) == 0 {
		t.Fatal("expected an overflow error")
	}
}

func TestScanIdentAndKeyword(t *testing.T) {
	toks, errs := scanAll(t, "def foo")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.DEF {
		t.Errorf("kind = %v, want DEF", toks[0].Kind)
	}
	if toks[1].Kind != token.IDENT || toks[1].Lexeme != "foo" {
		t.Errorf("got %+v", toks[1])
	}
}

func TestScanEOLCollapsed(t *testing.T) {
	toks, _ := scanAll(t, "x\n\n\ny")
	got := kinds(toks)
	want := []token.Kind{token.IDENT, token.EOL, token.IDENT, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanSingleQuotedNoInterpolation(t *testing.T) {
	toks, errs := scanAll(t, `'hello $world'`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.STRING {
		t.Fatalf("kind = %v, want STRING", toks[0].Kind)
	}
	if toks[0].Value.String != "hello $world" {
		t.Errorf("decoded = %q", toks[0].Value.String)
	}
}

func TestScanDoubleQuotedInterpolation(t *testing.T) {
	toks, errs := scanAll(t, `"x=$x!"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := kinds(toks)
	want := []token.Kind{token.EXPR_STRING_START, token.IDENT, token.EXPR_STRING_END, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if toks[0].Value.String != "x=" {
		t.Errorf("segment = %q", toks[0].Value.String)
	}
	if toks[1].Lexeme != "x" {
		t.Errorf("ident = %q", toks[1].Lexeme)
	}
	if toks[2].Value.String != "!" {
		t.Errorf("segment = %q", toks[2].Value.String)
	}
}

func TestScanBraceInterpolation(t *testing.T) {
	toks, errs := scanAll(t, `"sum=${1+2}"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := kinds(toks)
	want := []token.Kind{
		token.EXPR_STRING_START, token.INT, token.PLUS, token.INT,
		token.EXPR_STRING_END, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanTripleQuotedMultiline(t *testing.T) {
	src := "'''line1\nline2'''"
	toks, errs := scanAll(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.STRING {
		t.Fatalf("kind = %v", toks[0].Kind)
	}
	if toks[0].Value.String != "line1\nline2" {
		t.Errorf("decoded = %q", toks[0].Value.String)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, errs := scanAll(t, `'unterminated`)
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
}

func TestScanPunctuation(t *testing.T) {
	toks, errs := scanAll(t, "<=> ?. ** != === !==")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Kind{
		token.COMPARE, token.QUESTION_DOT, token.STAR_STAR, token.BANGEQ,
		token.TRIPLE_EQ, token.BANG_DOUBLE_EQ, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanDeterminism(t *testing.T) {
	src := `def fact(n) { n<=1 ? 1 : n*fact(n-1) }`
	toks1, _ := scanAll(t, src)
	toks2, _ := scanAll(t, src)
	if len(toks1) != len(toks2) {
		t.Fatalf("non-deterministic token count")
	}
	for i := range toks1 {
		if toks1[i].Kind != toks2[i].Kind || toks1[i].Lexeme != toks2[i].Lexeme {
			t.Fatalf("non-deterministic token at %d: %+v vs %+v", i, toks1[i], toks2[i])
		}
	}
}
