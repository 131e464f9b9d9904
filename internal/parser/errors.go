package parser

import (
	"fmt"
	"strings"

	"songsheet/internal/diag"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

// ParseError describes the first point where the token stream stopped
// matching the grammar.
type ParseError struct {
	Code     diag.Code
	Expected []token.Kind // empty for semantic errors such as a name mismatch
	Found    token.Token
	Pos      source.LineCol
	Msg      string
	Notes    []diag.Note
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

// Span returns the location of the offending token.
func (e *ParseError) Span() source.Span {
	return e.Found.Span
}

// fail records the error (only the first one counts) and forwards it to
// the reporter.
func (p *Parser) fail(e *ParseError) {
	if p.err != nil {
		return
	}
	p.err = e
	if p.opts.Reporter == nil {
		return
	}
	b := diag.ReportError(p.opts.Reporter, e.Code, e.Found.Span, e.Msg)
	for _, n := range e.Notes {
		b.WithNote(n.Span, n.Msg)
	}
	b.Emit()
}

// unexpected fails at the current token, listing the kinds that would have
// been accepted.
func (p *Parser) unexpected(context string, expected ...token.Kind) {
	p.failAt(diag.SynUnexpectedToken, context, expected...)
}

func (p *Parser) failAt(code diag.Code, context string, expected ...token.Kind) {
	found := p.peek()
	if found.Kind == token.EOF {
		code = diag.SynUnexpectedEOF
	}
	msg := fmt.Sprintf("unexpected %s", describeToken(found))
	if context != "" {
		msg += " " + context
	}
	if len(expected) > 0 {
		msg += ", expected " + describeKinds(expected)
	}
	p.fail(&ParseError{
		Code:     code,
		Expected: expected,
		Found:    found,
		Pos:      found.Pos,
		Msg:      msg,
	})
}

func describeToken(tok token.Token) string {
	switch {
	case tok.Kind == token.EOF:
		return "end of input"
	case tok.Kind == token.Space:
		return "whitespace"
	case tok.Kind.IsLiteral():
		return "'" + tok.Text + "'"
	default:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
	}
}

func describeKind(k token.Kind) string {
	if k.IsLiteral() {
		return "'" + k.String() + "'"
	}
	return k.String()
}

func describeKinds(kinds []token.Kind) string {
	if len(kinds) == 1 {
		return describeKind(kinds[0])
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = describeKind(k)
	}
	return "one of " + strings.Join(parts, ", ")
}
