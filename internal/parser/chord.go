package parser

import (
	"strings"

	"songsheet/internal/ast"
	"songsheet/internal/diag"
	"songsheet/internal/token"
)

// parseChordSpec dispatches on ^, \[ and \gtab.
func (p *Parser) parseChordSpec() (ast.ChordSpec, bool) {
	switch p.peek().Kind {
	case token.RepeatChord:
		tok := p.advance()
		return &ast.RepeatedChord{Span: tok.Span}, true
	case token.ChordOpen:
		return p.parseChordList()
	default:
		return p.parseGTab()
	}
}

// parseChordList — \[ chord (SPACE chord)* (\] | ])
func (p *Parser) parseChordList() (*ast.ChordList, bool) {
	open := p.advance()
	p.skipSpace()
	list := &ast.ChordList{}
	for {
		chord, ok := p.parseChord("in chord group")
		if !ok {
			return nil, false
		}
		list.Chords = append(list.Chords, chord)
		p.skipSpace()
		if p.atOr(token.ChordClose, token.RBracket) {
			closing := p.advance()
			list.Span = open.Span.Cover(closing.Span)
			return list, true
		}
		if !p.peek().IsChordPart() {
			p.unexpected("in chord group", token.Space, token.ChordClose, token.RBracket)
			return nil, false
		}
	}
}

// parseGTab — \gtab (chord | '{' chord '}') '{' TAB_SPEC '}'
func (p *Parser) parseGTab() (*ast.GTab, bool) {
	kw := p.advance()
	p.skipSpace()

	var chord ast.Chord
	var ok bool
	if p.at(token.LBrace) {
		p.advance()
		p.skipSpace()
		if chord, ok = p.parseChord(`in \gtab chord`); !ok {
			return nil, false
		}
		p.skipSpace()
		if _, ok = p.expect(token.RBrace, `after \gtab chord`); !ok {
			return nil, false
		}
	} else if chord, ok = p.parseChord(`after \gtab`); !ok {
		return nil, false
	}

	p.skipSpace()
	if _, ok = p.expect(token.LBrace, "before tablature"); !ok {
		return nil, false
	}
	p.skipSpace()
	if !p.at(token.TabSpec) {
		p.failAt(diag.SynExpectTabSpec, `in \gtab`, token.TabSpec)
		return nil, false
	}
	tab := p.advance()
	p.skipSpace()
	rb, ok := p.expect(token.RBrace, "after tablature")
	if !ok {
		return nil, false
	}
	return &ast.GTab{Chord: chord, Tab: *tab.Tab, Span: kw.Span.Cover(rb.Span)}, true
}

// parseChord — (WORD | CHORD_SYMBOL)+ joined into one name.
func (p *Parser) parseChord(context string) (ast.Chord, bool) {
	if !p.peek().IsChordPart() {
		p.failAt(diag.SynExpectChord, context, token.Word, token.ChordSymbol)
		return ast.Chord{}, false
	}
	first := p.advance()
	var name strings.Builder
	name.WriteString(first.Text)
	span := first.Span
	for p.peek().IsChordPart() {
		tok := p.advance()
		name.WriteString(tok.Text)
		span = span.Cover(tok.Span)
	}
	return ast.Chord{Name: name.String(), Span: span}, true
}
