package format

import (
	"errors"
	"strings"

	"songsheet/internal/ast"
	"songsheet/internal/source"
)

type Options struct {
	IndentWidth int // 0 means 2
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 2
	}
	return o
}

type printer struct {
	sf *source.File
	w  *Writer
}

// FormatSong renders song, parsed from sf, in canonical form: one
// environment header per line, nested bodies indented, inline blocks kept
// on their source lines, at most one blank line between blocks.
func FormatSong(sf *source.File, song *ast.Song, opt Options) ([]byte, error) {
	if sf == nil {
		return nil, errors.New("format: nil source file")
	}
	if song == nil {
		return nil, errors.New("format: nil song")
	}
	opt = opt.withDefaults()
	p := printer{sf: sf, w: NewWriter(opt, len(sf.Content))}
	p.printSong(song)
	return p.w.Bytes(), nil
}

func (p *printer) printSong(song *ast.Song) {
	p.w.WriteString(`\begin{song}`)
	p.printBraced(&song.Title)
	if song.Options.Len() > 0 {
		p.printOptions(&song.Options)
	}
	p.w.Newline()
	p.printBody(song.Body)
	p.w.WriteString(`\end{song}`)
	p.w.Newline()
}

// printBody keeps inline blocks on their source lines and collapses
// runs of blank lines into one.
func (p *printer) printBody(body []ast.Block) {
	var prevEnd, prevLine uint32
	prevEnv := false
	for i, b := range body {
		sp := blockSpan(b)
		line := p.sf.LineAt(sp.Start)
		env, isEnv := b.(*ast.Environment)
		switch {
		case i == 0:
		case line > prevLine+1:
			p.w.BlankLine()
		case isEnv || prevEnv || line > prevLine:
			p.w.Newline()
		case sp.Start == prevEnd:
			// вплотную: A\[G\]mazing
		default:
			p.w.Space()
		}
		if isEnv {
			p.printEnvironment(env)
		} else {
			p.printInline(b)
		}
		prevEnv = isEnv
		prevEnd = sp.End
		prevLine = p.sf.LineAt(sp.End)
	}
	p.w.Newline()
}

func (p *printer) printEnvironment(env *ast.Environment) {
	p.w.WriteString(`\begin{` + env.FullName() + `}`)
	if env.Title != nil {
		p.printBraced(env.Title)
	}
	if env.Options != nil {
		p.printOptions(env.Options)
	}
	p.w.Newline()
	p.w.IndentPush()
	p.printBody(env.Body)
	p.w.IndentPop()
	p.w.WriteString(`\end{` + env.FullName() + `}`)
	p.w.Newline()
}

func (p *printer) printInline(b ast.Block) {
	switch b := b.(type) {
	case *ast.TextRun:
		p.printRun(b)
	case *ast.Command:
		p.printCommand(b.Name, b.Args)
	case *ast.ChordList:
		p.w.WriteString(`\[` + strings.Join(b.Names(), " ") + `\]`)
	case *ast.RepeatedChord:
		p.w.WriteString("^")
	case *ast.GTab:
		p.w.WriteString(`\gtab{` + b.Chord.Name + `}{` + b.Tab.String() + `}`)
	}
}

func (p *printer) printOptions(o *ast.KVOptions) {
	p.w.WriteString("[")
	for i := range o.Entries {
		if i > 0 {
			p.w.WriteString(", ")
		}
		p.w.WriteString(o.Entries[i].Key + "=")
		p.printBraced(&o.Entries[i].Value)
	}
	p.w.WriteString("]")
}

func (p *printer) printCommand(name string, args []ast.TextRun) {
	p.w.WriteString(`\` + name)
	for i := range args {
		p.printBraced(&args[i])
	}
}

func (p *printer) printBraced(run *ast.TextRun) {
	p.w.WriteString("{")
	p.printRun(run)
	p.w.WriteString("}")
}

// printRun writes the parts of run; whitespace collapses to one space and
// source line breaks inside the run are kept.
func (p *printer) printRun(run *ast.TextRun) {
	var line, prevEnd uint32
	pendingSpace, freshLine := false, false
	for i, part := range run.Parts {
		loc := part.Location()
		pos := loc.Pos
		if i > 0 && pos.Line > line {
			p.w.Continue(int(pos.Line - line))
			pendingSpace, freshLine = false, true
		} else if i > 0 && !freshLine && loc.Span.Start > prevEnd {
			// на месте пропущенного недопустимого символа
			pendingSpace = true
		}
		line = max(line, pos.Line)
		prevEnd = loc.Span.End

		if _, ok := part.(ast.Space); ok {
			pendingSpace = !freshLine
			continue
		}
		freshLine = false
		if pendingSpace {
			p.w.WriteString(" ")
			pendingSpace = false
		}
		switch part := part.(type) {
		case ast.Word:
			p.w.WriteString(part.Text)
		case ast.Punct:
			p.w.WriteString(part.Text)
		case ast.Quote:
			if part.Open {
				p.w.WriteString("``")
			} else {
				p.w.WriteString("''")
			}
		case *ast.NestedCommand:
			p.printCommand(part.Name, part.Args)
		}
	}
	if pendingSpace {
		p.w.WriteString(" ")
	}
}

func blockSpan(b ast.Block) source.Span {
	switch b := b.(type) {
	case *ast.TextRun:
		return b.Span
	case *ast.Command:
		return b.Span
	case *ast.ChordList:
		return b.Span
	case *ast.RepeatedChord:
		return b.Span
	case *ast.GTab:
		return b.Span
	case *ast.Environment:
		return b.Span
	}
	return source.Span{}
}
