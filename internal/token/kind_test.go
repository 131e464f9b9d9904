package token_test

import (
	"testing"

	"songsheet/internal/token"
)

func TestKindNamesAreUnique(t *testing.T) {
	seen := make(map[string]token.Kind)
	for _, k := range token.Kinds() {
		name := k.String()
		if name == "" || name == "UNKNOWN" {
			t.Fatalf("kind %d has no name", k)
		}
		if prev, ok := seen[name]; ok {
			t.Fatalf("kinds %d and %d share name %q", prev, k, name)
		}
		seen[name] = k
	}
	if token.Kind(250).String() != "UNKNOWN" {
		t.Fatalf("out of range kind must render as UNKNOWN")
	}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{token.LBrace, token.RBrace, token.LBracket, token.RBracket, token.Comma, token.Equals}
	for _, k := range lits {
		if !k.IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Word, token.Begin, token.TabSpec, token.ChordOpen} {
		if k.IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestTokenString(t *testing.T) {
	fing := token.Fingering{'0', '3', '2', '0', '1', '0'}
	tests := []struct {
		tok  token.Token
		want string
	}{
		{token.Token{Kind: token.Word, Text: "Hello"}, "WORD Hello"},
		{token.Token{Kind: token.Comma, Text: ","}, ", ,"},
		{token.Token{Kind: token.EOF}, "EOF"},
		{token.Token{Kind: token.GTab, Text: `\gtab`}, `GTAB \gtab`},
		{
			token.Token{Kind: token.TabSpec, Text: "3: X32010 :032010", Tab: &token.Tab{
				Fret: 3, Strings: token.Strings{'X', '3', '2', '0', '1', '0'}, Fingering: &fing,
			}},
			"TAB_SPEC 3: X32010 :032010",
		},
	}
	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTabString(t *testing.T) {
	tab := token.Tab{Strings: token.Strings{'O', 'X', '0', '9', 'O', 'O'}}
	if tab.HasFret() {
		t.Fatal("zero fret means absent")
	}
	if got := tab.String(); got != "OX09OO" {
		t.Fatalf("unexpected render %q", got)
	}
	tab.Fret = 2
	if !tab.HasFret() || tab.String() != "2: OX09OO" {
		t.Fatalf("fret 2 lost: HasFret=%v render %q", tab.HasFret(), tab.String())
	}
}

func TestTextAndChordClasses(t *testing.T) {
	for _, k := range []token.Kind{token.Word, token.Space, token.Punct, token.Comma, token.ChordSymbol, token.BeginQuote, token.EndQuote} {
		if !(token.Token{Kind: k}).IsText() {
			t.Errorf("%v should be text", k)
		}
	}
	for _, k := range []token.Kind{token.Begin, token.Command, token.LBrace, token.Equals, token.TabSpec} {
		if (token.Token{Kind: k}).IsText() {
			t.Errorf("%v must NOT be text", k)
		}
	}
	if !(token.Token{Kind: token.ChordSymbol}).IsChordPart() || (token.Token{Kind: token.Space}).IsChordPart() {
		t.Error("chord part classification is wrong")
	}
}
