package token

import "testing"

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		if k.String() == "" {
			t.Errorf("missing string representation of kind %d", k)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	for k := AND; k < maxKind; k++ {
		got := LookupIdent(k.String())
		if got != k {
			t.Errorf("LookupIdent(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got := LookupIdent("notAKeyword"); got != IDENT {
		t.Errorf("LookupIdent(notAKeyword) = %v, want IDENT", got)
	}
}

func TestPosValid(t *testing.T) {
	cases := []struct {
		p    Pos
		want bool
	}{
		{Pos{}, false},
		{Pos{Line: 1}, false},
		{Pos{Col: 1}, false},
		{Pos{Line: 1, Col: 1}, true},
	}
	for _, c := range cases {
		if got := c.p.Valid(); got != c.want {
			t.Errorf("Pos%+v.Valid() = %t, want %t", c.p, got, c.want)
		}
	}
}

func TestErrorListSortAndError(t *testing.T) {
	var l ErrorList
	l.Add(Position{Source: "b.jactl", Pos: Pos{Line: 2, Col: 1}}, "second")
	l.Add(Position{Source: "a.jactl", Pos: Pos{Line: 5, Col: 1}}, "first by file")
	l.Add(Position{Source: "a.jactl", Pos: Pos{Line: 1, Col: 3}}, "earliest")
	l.Sort()

	if l[0].Msg != "earliest" || l[1].Msg != "first by file" || l[2].Msg != "second" {
		t.Fatalf("unexpected sort order: %+v", l)
	}
	if l.Err() == nil {
		t.Fatal("expected non-nil error")
	}
	var empty ErrorList
	if empty.Err() != nil {
		t.Fatal("expected nil error for empty list")
	}
}
