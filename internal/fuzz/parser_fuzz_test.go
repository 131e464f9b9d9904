package fuzztests

import (
	"errors"
	"testing"
	"time"

	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/parser"
	"songsheet/internal/source"
	"songsheet/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func FuzzParserBuildsTree(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.sng", input))

		bag := diag.NewBag(0)
		reporter := diag.BagReporter{Bag: bag}
		lx := lexer.New(file, lexer.Options{Reporter: reporter})
		song, err := parser.ParseSong(lx, parser.Options{Reporter: reporter})

		if err != nil {
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %v (%T) is not a *parser.ParseError", err, err)
			}
			if song != nil {
				t.Fatalf("failed parse returned a song")
			}
			if !bag.HasErrors() {
				t.Fatalf("parse error %v was not reported", err)
			}
			return
		}
		if err := testkit.CheckSpanInvariants(song, file); err != nil {
			t.Fatalf("span invariants: %v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzParserNoHang tests that the parser doesn't hang on any input.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// глубокая вложенность и незакрытые группы
	f.Add([]byte("\\begin{song}{T}\\begin{a}\\begin{b}\\begin{c}\\end{c}\\end{b}\\end{a}\\end{song}"))
	f.Add([]byte("\\begin{song}{T}\\x{\\y{\\z{"))
	f.Add([]byte("\\begin{song}{T}\\[C G Am F"))
	f.Add([]byte("\\begin{song}{T}[a={b},c={d},"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.sng", input))
			lx := lexer.New(file, lexer.Options{})
			_, _ = parser.ParseSong(lx, parser.Options{})
		}()

		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
