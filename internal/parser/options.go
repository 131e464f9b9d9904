package parser

import (
	"fmt"

	"songsheet/internal/ast"
	"songsheet/internal/token"
)

// parseKVOptions — '[' key={value} (',' key={value})* ']'.
// Order and duplicate keys are kept as written.
func (p *Parser) parseKVOptions() (*ast.KVOptions, bool) {
	open := p.advance()
	opts := &ast.KVOptions{}
	for {
		p.skipSpace()
		key, ok := p.expect(token.Word, "in options")
		if !ok {
			return nil, false
		}
		p.skipSpace()
		if _, ok := p.expect(token.Equals, "after option key"); !ok {
			return nil, false
		}
		p.skipSpace()
		value, ok := p.parseBraced(fmt.Sprintf("value of option %q", key.Text))
		if !ok {
			return nil, false
		}
		opts.Entries = append(opts.Entries, ast.KeyValue{
			Key:   key.Text,
			Value: value,
			Span:  key.Span.Cover(p.lastSpan),
		})
		p.skipSpace()
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if !p.at(token.RBracket) {
		p.unexpected("in options", token.Comma, token.RBracket)
		return nil, false
	}
	closing := p.advance()
	opts.Span = open.Span.Cover(closing.Span)
	return opts, true
}
