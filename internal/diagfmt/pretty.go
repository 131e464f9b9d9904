package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"songsheet/internal/diag"
	"songsheet/internal/source"
)

type palette struct {
	err, warn, info, code, path, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan),
		code:  color.New(color.FgHiBlack),
		path:  color.New(color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает
//
//	<path>:<line>:<col>: <SEV> [<CODE>]: <message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span и заметки.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, fs, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) error {
	header := fmt.Sprintf("%s %s: %s",
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.code.Sprint("["+d.Code.ID()+"]"),
		d.Message,
	)
	file, ok := spanFile(fs, d.Primary, d.Code)
	if !ok {
		_, err := fmt.Fprintln(w, header)
		return err
	}

	start, _ := fs.Resolve(d.Primary)
	loc := fmt.Sprintf("%s:%d:%d:", file.FormatPath(opts.PathMode.String(), fs.BaseDir()), start.Line, start.Col)
	if _, err := fmt.Fprintf(w, "%s %s\n", pal.path.Sprint(loc), header); err != nil {
		return err
	}
	if err := writeSnippet(w, file, fs, d.Primary, opts.Context, pal); err != nil {
		return err
	}

	if !opts.ShowNotes {
		return nil
	}
	for _, n := range d.Notes {
		noteFile, ok := spanFile(fs, n.Span, d.Code)
		if !ok {
			if _, err := fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg); err != nil {
				return err
			}
			continue
		}
		pos, _ := fs.Resolve(n.Span)
		if _, err := fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"),
			noteFile.FormatPath(opts.PathMode.String(), fs.BaseDir()), pos.Line, pos.Col, n.Msg); err != nil {
			return err
		}
	}
	return nil
}

// spanFile returns the file a span points into. I/O diagnostics carry no
// meaningful location: their message already names the path.
func spanFile(fs *source.FileSet, sp source.Span, code diag.Code) (*source.File, bool) {
	if fs == nil || code == diag.IOLoadFileError || int(sp.File) >= fs.Len() {
		return nil, false
	}
	return fs.Get(sp.File), true
}

func writeSnippet(w io.Writer, file *source.File, fs *source.FileSet, sp source.Span, context int8, pal palette) error {
	start, end := fs.Resolve(sp)
	first := start.Line
	if c := uint32(max(context, 0)); first > c {
		first -= c
	} else {
		first = 1
	}
	gutter := len(fmt.Sprint(start.Line))

	for line := first; line <= start.Line; line++ {
		text := file.GetLine(line)
		if _, err := fmt.Fprintf(w, " %*d | %s\n", gutter, line, text); err != nil {
			return err
		}
	}

	text := file.GetLine(start.Line)
	lineStart := sp.Start - (start.Col - 1)
	prefix := sliceText(text, 0, int(start.Col-1))
	width := 1
	if end.Line == start.Line && sp.End > sp.Start {
		width = max(1, runewidth.StringWidth(sliceText(text, int(sp.Start-lineStart), int(sp.End-lineStart))))
	}
	marker := "^" + strings.Repeat("~", width-1)
	_, err := fmt.Fprintf(w, " %s | %s%s\n",
		strings.Repeat(" ", gutter),
		strings.Repeat(" ", runewidth.StringWidth(prefix)),
		pal.caret.Sprint(marker),
	)
	return err
}

func sliceText(s string, from, to int) string {
	from = min(max(from, 0), len(s))
	to = min(max(to, from), len(s))
	return s[from:to]
}
