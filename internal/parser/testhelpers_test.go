package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"songsheet/internal/ast"
	"songsheet/internal/diag"
	"songsheet/internal/parser"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseSource(src string) (*ast.Song, *diag.Bag, error) {
	bag := diag.NewBag(0)
	song, err := parser.ParseString(src, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return song, bag, err
}

// mustParse разбирает корректный вход и падает при любой ошибке
func mustParse(t *testing.T, src string) *ast.Song {
	t.Helper()
	song, bag, err := parseSource(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v\ndiagnostics: %s", err, diagnosticsSummary(bag))
	}
	if song == nil {
		t.Fatalf("nil song without error")
	}
	return song
}

// mustFail разбирает заведомо ошибочный вход и возвращает *ParseError
func mustFail(t *testing.T, src string, code diag.Code) *parser.ParseError {
	t.Helper()
	song, bag, err := parseSource(src)
	if err == nil {
		t.Fatalf("expected %s, parse succeeded", code.ID())
	}
	if song != nil {
		t.Fatalf("partial tree returned together with error %v", err)
	}
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not *parser.ParseError", err)
	}
	if perr.Code != code {
		t.Fatalf("got %s (%s), want %s", perr.Code.ID(), perr.Msg, code.ID())
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == code {
			found = true
		}
	}
	if !found {
		t.Fatalf("reporter did not receive %s: %s", code.ID(), diagnosticsSummary(bag))
	}
	return perr
}

func blockTexts(blocks []ast.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		switch b := b.(type) {
		case *ast.TextRun:
			out[i] = "text:" + b.String()
		case *ast.ChordList:
			out[i] = "chords:" + b.String()
		case *ast.RepeatedChord:
			out[i] = "^"
		case *ast.GTab:
			out[i] = "gtab:" + b.Chord.Name + "=" + b.Tab.String()
		case *ast.Command:
			out[i] = `\` + b.Name
		case *ast.Environment:
			out[i] = "env:" + b.FullName()
		}
	}
	return out
}
