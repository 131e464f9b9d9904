package token

import (
	"strings"

	"songsheet/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Pos  source.LineCol
	Text string
	Tab  *Tab // only for Kind == TabSpec
}

// String renders the "<KIND> <value>" debug form used by the tokenize filter.
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	switch {
	case t.Kind == TabSpec && t.Tab != nil:
		b.WriteByte(' ')
		b.WriteString(t.Tab.String())
	case t.Text != "":
		b.WriteByte(' ')
		b.WriteString(t.Text)
	}
	return b.String()
}

// IsText reports whether the token may appear inside a run of lyrics.
func (t Token) IsText() bool {
	switch t.Kind {
	case Word, Space, Punct, Comma, ChordSymbol, BeginQuote, EndQuote:
		return true
	default:
		return false
	}
}

// IsChordPart reports whether the token may be part of a chord name.
func (t Token) IsChordPart() bool {
	return t.Kind == Word || t.Kind == ChordSymbol
}
