package lexer

import (
	"fmt"
	"iter"

	"songsheet/internal/diag"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

type Lexer struct {
	file      *source.File
	cursor    Cursor
	opts      Options
	look      *token.Token // 1 элементный буфер для токена
	line      uint32
	lineStart uint32
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		line:   1,
	}
}

// File returns the file being tokenized.
func (lx *Lexer) File() *source.File { return lx.file }

// Next returns the next token. Line breaks are consumed silently; illegal
// characters are reported, returned as token.Illegal and skipped.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipLineBreaks()

	if lx.cursor.EOF() {
		return token.Token{
			Kind: token.EOF,
			Span: lx.EmptySpan(),
			Pos:  lx.pos(lx.cursor.Off),
		}
	}

	start := lx.cursor.Mark()
	tok := lx.scan()
	tok.Span = lx.cursor.SpanFrom(start)
	tok.Pos = lx.pos(tok.Span.Start)
	if tok.Text == "" {
		tok.Text = string(lx.file.Content[tok.Span.Start:tok.Span.End])
	}

	if tok.Kind == token.Illegal {
		lx.report(diag.LexUnknownChar, tok.Span,
			fmt.Sprintf("illegal character %q at line %d", tok.Text, tok.Pos.Line))
	} else if lx.opts.MaxTokenLen > 0 && tok.Span.Len() > lx.opts.MaxTokenLen {
		lx.report(diag.LexTokenTooLong, tok.Span,
			fmt.Sprintf("token longer than %d bytes", lx.opts.MaxTokenLen))
	}
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	t := lx.Next()
	lx.look = &t
	return t
}

// EmptySpan is a zero-length span at the current cursor position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// skipLineBreaks collapses a run of '\n' into one line boundary event.
func (lx *Lexer) skipLineBreaks() {
	n := uint32(0)
	for lx.cursor.Peek() == '\n' && !lx.cursor.EOF() {
		lx.cursor.Bump()
		n++
	}
	if n > 0 {
		lx.line += n
		lx.lineStart = lx.cursor.Off
	}
}

// pos is 1-based in both line and column, like diagnostics.
func (lx *Lexer) pos(off uint32) source.LineCol {
	return source.LineCol{Line: lx.line, Col: off - lx.lineStart + 1}
}

// All returns a lazy sequence of tokens ending with (and including) EOF.
// Tokens are pulled from lx on demand; stopping early leaves the rest unlexed.
func All(lx *Lexer) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Tokenize lexes the whole file, EOF included.
func Tokenize(file *source.File, opts Options) []token.Token {
	tokens := make([]token.Token, 0, len(file.Content)/3+1)
	for tok := range All(New(file, opts)) {
		tokens = append(tokens, tok)
	}
	return tokens
}
