package token

// Kind represents the category of a song-sheet token.
type Kind uint8

const (
	// Illegal marks a character no lexical class accepts.
	Illegal Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Space is a run of spaces, tabs, form feeds or vertical tabs.
	Space
	// Word is a run of word characters and apostrophes.
	Word
	// Punct is one of . : ; ? ! -
	Punct
	// ChordSymbol is one of 0-9 / # & *
	ChordSymbol
	// BeginQuote is the `` literal.
	BeginQuote
	// EndQuote is '' or ".
	EndQuote

	// Begin is \begin.
	Begin
	// End is \end.
	End
	// ChordOpen is \[ and starts a chord group.
	ChordOpen
	// ChordClose is \] and ends a chord group.
	ChordClose
	// RepeatChord is ^.
	RepeatChord
	// Command is a \name identifier.
	Command
	// GTab is the \gtab identifier.
	GTab

	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	Comma    // ,
	Equals   // =

	// TabSpec carries a parsed guitar tablature descriptor.
	TabSpec

	kindCount
)

var kindNames = [...]string{
	Illegal:     "ILLEGAL",
	EOF:         "EOF",
	Space:       "SPACE",
	Word:        "WORD",
	Punct:       "PUNCTUATION",
	ChordSymbol: "CHORD_SYMBOL",
	BeginQuote:  "BEGIN_QUOTE",
	EndQuote:    "END_QUOTE",
	Begin:       "BEGIN",
	End:         "END",
	ChordOpen:   "CHORD_OPEN",
	ChordClose:  "CHORD_CLOSE",
	RepeatChord: "REPEAT_CHORD",
	Command:     "COMMAND",
	GTab:        "GTAB",
	LBrace:      "{",
	RBrace:      "}",
	LBracket:    "[",
	RBracket:    "]",
	Comma:       ",",
	Equals:      "=",
	TabSpec:     "TAB_SPEC",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Kinds returns every token kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Illegal; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsLiteral reports whether the kind is a single fixed bracket/brace/separator literal.
func (k Kind) IsLiteral() bool {
	switch k {
	case LBrace, RBrace, LBracket, RBracket, Comma, Equals:
		return true
	default:
		return false
	}
}
