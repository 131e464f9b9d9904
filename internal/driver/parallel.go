package driver

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"songsheet/internal/ast"
	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/logs"
	"songsheet/internal/observ"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

// SongExtensions are the file suffixes picked up in directory mode.
var SongExtensions = []string{".sng", ".song", ".tex"}

// DirOptions configures TokenizeDir and ParseDir.
type DirOptions struct {
	MaxDiagnostics int           // per file; 0 means unlimited
	Jobs           int           // parallel workers; <= 0 means GOMAXPROCS
	Progress       ProgressSink  // optional
	Timer          *observ.Timer // optional, one phase per file
}

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path   string        // путь к файлу
	FileID source.FileID // ID файла в FileSet (0 при ошибке загрузки)
	Tokens []token.Token // токены файла
	Bag    *diag.Bag     // диагностики
}

// ParseDirResult содержит результат парсинга одного файла
type ParseDirResult struct {
	Path   string
	FileID source.FileID
	Song   *ast.Song // nil on load or syntax error
	Err    error     // load error or *parser.ParseError
	Bag    *diag.Bag
}

// ListSongFiles returns all song files under dir, sorted.
func ListSongFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isSongFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}

func isSongFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SongExtensions, ext)
}

// loadAll preloads files into one FileSet; load errors are kept per path.
func loadAll(dir string, files []string) (*source.FileSet, map[string]source.FileID, map[string]error) {
	fileSet := source.NewFileSetWithBase(dir)
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error)
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}
	return fileSet, fileIDs, loadErrors
}

func loadErrorBag(maxDiagnostics int, err error) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
	return bag
}

func workers(jobs, files int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}

// TokenizeDir токенизирует все файлы песен в директории параллельно
func TokenizeDir(ctx context.Context, dir string, opts DirOptions) (*source.FileSet, []TokenizeDirResult, error) {
	files, err := ListSongFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet, fileIDs, loadErrors := loadAll(dir, files)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]TokenizeDirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Jobs, len(files)))

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErr, failed := loadErrors[path]; failed {
				results[i] = TokenizeDirResult{Path: path, Bag: loadErrorBag(opts.MaxDiagnostics, loadErr)}
				return nil
			}
			done := opts.Timer.Track("tokenize " + path)
			fileID := fileIDs[path]
			bag := diag.NewBag(opts.MaxDiagnostics)
			tokens := lexer.Tokenize(fileSet.Get(fileID), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
			done("")
			results[i] = TokenizeDirResult{Path: path, FileID: fileID, Tokens: tokens, Bag: bag}
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return fileSet, results, err
}

// ParseDir парсит все файлы песен в директории параллельно. Each file gets
// its own lexer, parser and bag; results come back in path order.
func ParseDir(ctx context.Context, dir string, opts DirOptions) (*source.FileSet, []ParseDirResult, error) {
	files, err := ListSongFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet, fileIDs, loadErrors := loadAll(dir, files)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	sink := sinkOrNop(opts.Progress)
	for _, path := range files {
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}
	sink.OnEvent(Event{Stage: StageParse, Status: StatusWorking})
	started := time.Now()

	results := make([]ParseDirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Jobs, len(files)))

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = parseOne(gctx, fileSet, fileIDs, loadErrors, path, opts, sink)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	sink.OnEvent(Event{Stage: StageParse, Status: status, Err: err, Elapsed: time.Since(started)})
	return fileSet, results, err
}

func parseOne(
	ctx context.Context,
	fileSet *source.FileSet,
	fileIDs map[string]source.FileID,
	loadErrors map[string]error,
	path string,
	opts DirOptions,
	sink ProgressSink,
) ParseDirResult {
	start := time.Now()
	if loadErr, failed := loadErrors[path]; failed {
		slog.WarnContext(logs.WithPath(ctx, path), "cannot load song", "error", loadErr)
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
		return ParseDirResult{Path: path, Err: loadErr, Bag: loadErrorBag(opts.MaxDiagnostics, loadErr)}
	}

	sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusWorking})
	done := opts.Timer.Track("parse " + path)
	fileID := fileIDs[path]
	bag := diag.NewBag(opts.MaxDiagnostics)
	song, err := parseFile(ctx, fileSet.Get(fileID), bag)
	note := ""
	if err != nil {
		note = "error"
	}
	done(note)

	status := StatusDone
	if err != nil || bag.HasErrors() {
		status = StatusError
	}
	sink.OnEvent(Event{File: path, Stage: StageParse, Status: status, Err: err, Elapsed: time.Since(start)})
	return ParseDirResult{Path: path, FileID: fileID, Song: song, Err: err, Bag: bag}
}
