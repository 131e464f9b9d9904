package parser

import (
	"fmt"
	"strings"

	"songsheet/internal/ast"
	"songsheet/internal/diag"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

const songEnvName = "song"

// blockStarters are the token kinds that may begin a body block.
var blockStarters = []token.Kind{
	token.Begin, token.End, token.Command, token.ChordOpen, token.RepeatChord, token.GTab,
	token.Word, token.Punct, token.Comma, token.ChordSymbol, token.BeginQuote, token.EndQuote,
}

// envName is the `{name}` or `{name*}` header of \begin and \end.
type envName struct {
	tok     token.Token // the WORD token
	name    string
	starred bool
	span    source.Span
}

func (n envName) full() string {
	if n.starred {
		return n.name + "*"
	}
	return n.name
}

// parseSong — song := \begin{song}{title}[options] body \end{song} EOF
func (p *Parser) parseSong() (*ast.Song, bool) {
	begin, ok := p.expect(token.Begin, "at start of song")
	if !ok {
		return nil, false
	}
	p.skipSpace()
	name, ok := p.parseEnvName(`\begin`)
	if !ok {
		return nil, false
	}
	if name.full() != songEnvName {
		p.fail(&ParseError{
			Code:  diag.SynUnexpectedToken,
			Found: name.tok,
			Pos:   name.tok.Pos,
			Msg:   fmt.Sprintf(`expected \begin{song}, found \begin{%s}`, name.full()),
		})
		return nil, false
	}

	song := &ast.Song{}
	p.skipSpace()
	if song.Title, ok = p.parseBraced("song title"); !ok {
		return nil, false
	}
	p.skipSpace()
	if p.at(token.LBracket) {
		opts, ok := p.parseKVOptions()
		if !ok {
			return nil, false
		}
		song.Options = *opts
	}
	if song.Body, ok = p.parseBody(); !ok {
		return nil, false
	}
	end, ok := p.parseEnvEnd(name)
	if !ok {
		return nil, false
	}
	p.skipSpace()
	if !p.at(token.EOF) {
		p.failAt(diag.SynTrailingInput, `after \end{song}`, token.EOF)
		return nil, false
	}
	song.Span = begin.Span.Cover(end)
	return song, true
}

// parseBody — block* up to \end or end of input.
func (p *Parser) parseBody() ([]ast.Block, bool) {
	var body []ast.Block
	for {
		p.skipSpace()
		tok := p.peek()
		switch tok.Kind {
		case token.End, token.EOF:
			return body, true
		case token.Begin:
			env, ok := p.parseEnvironment()
			if !ok {
				return nil, false
			}
			body = append(body, env)
		case token.Command:
			cmd, ok := p.parseCommand()
			if !ok {
				return nil, false
			}
			body = append(body, cmd)
		case token.ChordOpen, token.RepeatChord, token.GTab:
			spec, ok := p.parseChordSpec()
			if !ok {
				return nil, false
			}
			body = append(body, spec)
		default:
			if !tok.IsText() {
				p.unexpected("in body", blockStarters...)
				return nil, false
			}
			if run := p.parseTextRun(); run != nil {
				body = append(body, run)
			}
		}
	}
}

// parseEnvironment — \begin{name}[{title}][[options]] body \end{name}
func (p *Parser) parseEnvironment() (*ast.Environment, bool) {
	begin := p.advance()
	p.skipSpace()
	name, ok := p.parseEnvName(`\begin`)
	if !ok {
		return nil, false
	}
	env := &ast.Environment{Name: name.name, Starred: name.starred}

	p.skipSpace()
	if p.at(token.LBrace) {
		title, ok := p.parseBraced("environment title")
		if !ok {
			return nil, false
		}
		env.Title = &title
	}
	p.skipSpace()
	if p.at(token.LBracket) {
		if env.Options, ok = p.parseKVOptions(); !ok {
			return nil, false
		}
	}
	if env.Body, ok = p.parseBody(); !ok {
		return nil, false
	}
	end, ok := p.parseEnvEnd(name)
	if !ok {
		return nil, false
	}
	env.Span = begin.Span.Cover(end)
	return env, true
}

// parseEnvName — '{' WORD ['*'] '}'
func (p *Parser) parseEnvName(keyword string) (envName, bool) {
	if _, ok := p.expect(token.LBrace, "after "+keyword); !ok {
		return envName{}, false
	}
	p.skipSpace()
	word, ok := p.expect(token.Word, "in environment name")
	if !ok {
		return envName{}, false
	}
	n := envName{tok: word, name: word.Text, span: word.Span}
	if star := p.peek(); star.Kind == token.ChordSymbol && star.Text == "*" && star.Span.Start == word.Span.End {
		p.advance()
		n.starred = true
		n.span = n.span.Cover(star.Span)
	}
	p.skipSpace()
	if _, ok := p.expect(token.RBrace, "after environment name"); !ok {
		return envName{}, false
	}
	return n, true
}

// parseEnvEnd consumes `\end{name}` and checks it against the opening
// name. It returns the span of the closing brace.
func (p *Parser) parseEnvEnd(open envName) (source.Span, bool) {
	if _, ok := p.expect(token.End, fmt.Sprintf(`in body of \begin{%s}`, open.full())); !ok {
		return source.Span{}, false
	}
	p.skipSpace()
	closing, ok := p.parseEnvName(`\end`)
	if !ok {
		return source.Span{}, false
	}
	if closing.full() != open.full() {
		p.fail(&ParseError{
			Code:  diag.SynEnvNameMismatch,
			Found: closing.tok,
			Pos:   closing.tok.Pos,
			Msg:   fmt.Sprintf(`\end{%s} does not match \begin{%s}`, closing.full(), open.full()),
			Notes: []diag.Note{{Span: open.span, Msg: "environment opened here"}},
		})
		return source.Span{}, false
	}
	return p.lastSpan, true
}

// parseCommand — body-level \name{arg}...
func (p *Parser) parseCommand() (*ast.Command, bool) {
	tok := p.advance()
	args, ok := p.parseCommandArgs(tok)
	if !ok {
		return nil, false
	}
	return &ast.Command{
		Name: commandName(tok),
		Args: args,
		Span: tok.Span.Cover(p.lastSpan),
	}, true
}

// parseCommandArgs — ('{' text '}')+ directly after the command name.
func (p *Parser) parseCommandArgs(tok token.Token) ([]ast.TextRun, bool) {
	ctx := "argument of " + tok.Text
	var args []ast.TextRun
	for {
		arg, ok := p.parseBraced(ctx)
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.at(token.LBrace) {
			return args, true
		}
	}
}

func commandName(tok token.Token) string {
	return strings.TrimPrefix(tok.Text, `\`)
}
