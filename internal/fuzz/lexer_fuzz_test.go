package fuzztests

import (
	"testing"

	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.sng", input))

		bag := diag.NewBag(0)
		tokens := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
			t.Fatalf("token stream must end with EOF")
		}
		illegal := 0
		var prevEnd uint32
		for i, tok := range tokens {
			if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start {
				t.Fatalf("token %d %v has span %v after %d", i, tok, tok.Span, prevEnd)
			}
			if int(tok.Span.End) > len(input) {
				t.Fatalf("token %d %v ends past input (%d bytes)", i, tok, len(input))
			}
			if tok.Kind != token.EOF && tok.Span.Empty() {
				t.Fatalf("token %d %v is empty", i, tok)
			}
			if tok.Kind == token.Illegal {
				illegal++
			}
			prevEnd = tok.Span.End
		}
		if got := bag.Len(); got != illegal {
			t.Fatalf("%d illegal tokens but %d diagnostics", illegal, got)
		}
	})
}
