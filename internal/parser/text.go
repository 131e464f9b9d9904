package parser

import (
	"songsheet/internal/ast"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

// parseBraced — '{' text '}'
func (p *Parser) parseBraced(what string) (ast.TextRun, bool) {
	if _, ok := p.expect(token.LBrace, "before "+what); !ok {
		return ast.TextRun{}, false
	}
	run, ok := p.parseText()
	if !ok {
		return ast.TextRun{}, false
	}
	if _, ok := p.expect(token.RBrace, "in "+what); !ok {
		return ast.TextRun{}, false
	}
	return run, true
}

// parseText — text_part* inside braces; commands nest.
func (p *Parser) parseText() (ast.TextRun, bool) {
	var parts []ast.TextPart
	for {
		tok := p.peek()
		switch {
		case tok.IsText():
			parts = appendTextToken(parts, p.advance())
		case tok.Kind == token.Command:
			cmd, ok := p.parseNestedCommand()
			if !ok {
				return ast.TextRun{}, false
			}
			parts = append(parts, cmd)
		default:
			return makeRun(parts, tok.Span), true
		}
	}
}

func (p *Parser) parseNestedCommand() (*ast.NestedCommand, bool) {
	tok := p.advance()
	args, ok := p.parseCommandArgs(tok)
	if !ok {
		return nil, false
	}
	return &ast.NestedCommand{
		Loc:  ast.Loc{Span: tok.Span.Cover(p.lastSpan), Pos: tok.Pos},
		Name: commandName(tok),
		Args: args,
	}, true
}

// parseTextRun collects prose at body level. Surrounding whitespace
// belongs to the block boundary and is dropped; nil means the run held
// nothing but whitespace.
func (p *Parser) parseTextRun() *ast.TextRun {
	var parts []ast.TextPart
	for p.peek().IsText() {
		parts = appendTextToken(parts, p.advance())
	}
	parts = trimSpace(parts)
	if len(parts) == 0 {
		return nil
	}
	run := makeRun(parts, source.Span{})
	return &run
}

// appendTextToken turns tok into a part. Word and chord-symbol tokens that
// touch the previous word are folded into it ("2nd", "rock&roll").
func appendTextToken(parts []ast.TextPart, tok token.Token) []ast.TextPart {
	loc := ast.Loc{Span: tok.Span, Pos: tok.Pos}
	switch tok.Kind {
	case token.Word, token.ChordSymbol:
		if n := len(parts); n > 0 {
			if w, ok := parts[n-1].(ast.Word); ok && w.Span.End == tok.Span.Start {
				w.Text += tok.Text
				w.Span = w.Span.Cover(tok.Span)
				parts[n-1] = w
				return parts
			}
		}
		return append(parts, ast.Word{Loc: loc, Text: tok.Text})
	case token.Space:
		return append(parts, ast.Space{Loc: loc, Text: tok.Text})
	case token.Punct, token.Comma:
		return append(parts, ast.Punct{Loc: loc, Text: tok.Text})
	case token.BeginQuote:
		return append(parts, ast.Quote{Loc: loc, Open: true})
	case token.EndQuote:
		return append(parts, ast.Quote{Loc: loc})
	}
	return parts
}

func trimSpace(parts []ast.TextPart) []ast.TextPart {
	for len(parts) > 0 {
		if _, ok := parts[0].(ast.Space); !ok {
			break
		}
		parts = parts[1:]
	}
	for len(parts) > 0 {
		if _, ok := parts[len(parts)-1].(ast.Space); !ok {
			break
		}
		parts = parts[:len(parts)-1]
	}
	return parts
}

// makeRun wraps parts; an empty run gets a zero-width span at `at`.
func makeRun(parts []ast.TextPart, at source.Span) ast.TextRun {
	if len(parts) == 0 {
		return ast.TextRun{Span: source.Span{File: at.File, Start: at.Start, End: at.Start}}
	}
	first := parts[0].Location().Span
	last := parts[len(parts)-1].Location().Span
	return ast.TextRun{Parts: parts, Span: first.Cover(last)}
}
