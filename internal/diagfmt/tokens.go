package diagfmt

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"

	"songsheet/internal/source"
	"songsheet/internal/token"
)

// maxTokenTextWidth ограничивает ширину колонки текста в pretty-выводе.
const maxTokenTextWidth = 48

type TabOutput struct {
	Fret      int    `json:"fret,omitempty"`
	Strings   string `json:"strings"`
	Fingering string `json:"fingering,omitempty"`
}

type TokenOutput struct {
	Kind string      `json:"kind"`
	Text string      `json:"text,omitempty"`
	Line uint32      `json:"line"`
	Col  uint32      `json:"col"`
	Span source.Span `json:"span"`
	Tab  *TabOutput  `json:"tab,omitempty"`
}

func tokenOutput(tok token.Token) TokenOutput {
	out := TokenOutput{
		Kind: tok.Kind.String(),
		Text: tok.Text,
		Line: tok.Pos.Line,
		Col:  tok.Pos.Col,
		Span: tok.Span,
	}
	if tok.Tab != nil {
		out.Tab = &TabOutput{Fret: tok.Tab.Fret, Strings: string(tok.Tab.Strings[:])}
		if tok.Tab.Fingering != nil {
			out.Tab.Fingering = string(tok.Tab.Fingering[:])
		}
	}
	return out
}

// FormatTokensPlain writes one "<KIND> <value>" line per token, EOF
// excluded. It stops at the first write error so a closed pipe ends output
// promptly.
func FormatTokensPlain(w io.Writer, tokens []token.Token) error {
	bw := bufio.NewWriter(w)
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		if _, err := bw.WriteString(tok.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	kindWidth := 0
	for _, tok := range tokens {
		kindWidth = max(kindWidth, len(tok.Kind.String()))
	}
	textWidth := 0
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		text := tok.Text
		if tok.Kind == token.TabSpec && tok.Tab != nil {
			text = tok.Tab.String()
		}
		texts[i] = runewidth.Truncate(strconv.Quote(text), maxTokenTextWidth, "...\"")
		textWidth = max(textWidth, runewidth.StringWidth(texts[i]))
	}

	bw := bufio.NewWriter(w)
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)
		_, err := fmt.Fprintf(bw, "%4d: %-*s %s at %d:%d-%d:%d\n",
			i+1, kindWidth, tok.Kind.String(),
			runewidth.FillRight(texts[i], textWidth),
			startPos.Line, startPos.Col, endPos.Line, endPos.Col,
		)
		if err != nil {
			return err
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	return bw.Flush()
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		output = append(output, tokenOutput(tok))
		if tok.Kind == token.EOF {
			break
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
