package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"songsheet/internal/ast"
	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/logs"
	"songsheet/internal/parser"
	"songsheet/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Song    *ast.Song // nil when Err is set
	Err     error     // *parser.ParseError
	Bag     *diag.Bag
}

// Parse loads and parses one song file. The returned error is reserved for
// I/O failures; syntax errors are carried in ParseResult.Err and the bag.
func Parse(ctx context.Context, path string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return parseLoaded(ctx, fs, fs.Get(fileID), maxDiagnostics), nil
}

// ParseReader parses everything r yields; name is used in diagnostics.
func ParseReader(ctx context.Context, name string, r io.Reader, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return parseLoaded(ctx, fs, fs.Get(fileID), maxDiagnostics), nil
}

// ParseText parses an in-memory song.
func ParseText(ctx context.Context, name, text string, maxDiagnostics int) *ParseResult {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, []byte(text))
	return parseLoaded(ctx, fs, fs.Get(fileID), maxDiagnostics)
}

func parseLoaded(ctx context.Context, fs *source.FileSet, file *source.File, maxDiagnostics int) *ParseResult {
	bag := diag.NewBag(maxDiagnostics)
	song, err := parseFile(ctx, file, bag)
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Song:    song,
		Err:     err,
		Bag:     bag,
	}
}

// parseFile runs lexer and parser over one file; both report into bag
// through one deduplicating reporter.
func parseFile(ctx context.Context, file *source.File, bag *diag.Bag) (*ast.Song, error) {
	ctx = logs.WithPath(ctx, file.Path)
	start := time.Now()

	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	song, err := parser.ParseSong(lx, parser.Options{Reporter: reporter})

	if err != nil {
		slog.DebugContext(ctx, "parse failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	slog.DebugContext(ctx, "parsed song",
		"blocks", len(song.Body),
		"diagnostics", bag.Len(),
		"duration", time.Since(start),
	)
	return song, nil
}
