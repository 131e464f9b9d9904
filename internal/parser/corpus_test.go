package parser_test

import (
	"path/filepath"
	"testing"

	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/parser"
	"songsheet/internal/source"
	"songsheet/internal/testkit"
)

func TestCorpusSongsParse(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "testdata", "songs", "*.sng"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no corpus songs")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			fs := source.NewFileSet()
			id, err := fs.Load(path)
			if err != nil {
				t.Fatal(err)
			}
			file := fs.Get(id)
			bag := diag.NewBag(0)
			reporter := diag.BagReporter{Bag: bag}
			song, err := parser.ParseSong(lexer.New(file, lexer.Options{Reporter: reporter}), parser.Options{Reporter: reporter})
			if err != nil {
				t.Fatalf("%v\ndiagnostics: %s", err, diagnosticsSummary(bag))
			}
			if bag.Len() != 0 {
				t.Fatalf("diagnostics: %s", diagnosticsSummary(bag))
			}
			if err := testkit.CheckSpanInvariants(song, file); err != nil {
				t.Fatal(err)
			}
		})
	}
}
