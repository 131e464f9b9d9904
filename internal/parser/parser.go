package parser

import (
	"slices"

	"songsheet/internal/ast"
	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

// Options configures a single parse.
type Options struct {
	// Reporter receives the fatal syntax error, if any. Lexical errors are
	// reported by the lexer through its own options.
	Reporter diag.Reporter
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer // поток токенов (Peek/Next)
	opts     Options
	lastSpan source.Span  // span последнего съеденного токена
	err      *ParseError  // первая (и единственная) ошибка
}

// ParseSong parses exactly one song from lx. On failure it returns a nil
// song and a *ParseError; no partial tree is ever returned.
func ParseSong(lx *lexer.Lexer, opts Options) (*ast.Song, error) {
	p := Parser{
		lx:       lx,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}
	song, ok := p.parseSong()
	if !ok {
		return nil, p.err
	}
	return song, nil
}

// ParseString lexes and parses text held in memory. Lexical diagnostics
// and the syntax error both go to opts.Reporter.
func ParseString(text string, opts Options) (*ast.Song, error) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("<input>", []byte(text)))
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	return ParseSong(lx, opts)
}

// peek returns the next meaningful token. Illegal tokens were already
// reported by the lexer and are dropped here.
func (p *Parser) peek() token.Token {
	for {
		tok := p.lx.Peek()
		if tok.Kind != token.Illegal {
			return tok
		}
		p.lx.Next()
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// advance съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// skipSpace consumes at most one whitespace token.
func (p *Parser) skipSpace() {
	if p.at(token.Space) {
		p.advance()
	}
}

// expect consumes a token of kind k or fails with an "expected k" error.
func (p *Parser) expect(k token.Kind, context string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.unexpected(context, k)
	return token.Token{}, false
}
