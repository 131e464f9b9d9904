package ast

import (
	"strings"

	"songsheet/internal/source"
)

// TextPart is one piece of a TextRun: Word, Space, Punct, Quote or
// *NestedCommand.
type TextPart interface {
	Node
	Location() Loc
	textPart()
}

type (
	// Word is a run of word characters; digits and chord symbols glued to
	// it (e.g. "2nd", "rock&roll") are folded into the same word.
	Word struct {
		Loc
		Text string
	}

	Space struct {
		Loc
		Text string
	}

	Punct struct {
		Loc
		Text string
	}

	// Quote is an opening ``...`` or closing '' / " quotation mark.
	Quote struct {
		Loc
		Open bool
	}

	// NestedCommand is a `\name{...}` appearing inside braced text.
	NestedCommand struct {
		Loc
		Name string
		Args []TextRun
	}
)

func (p Word) Location() Loc           { return p.Loc }
func (p Space) Location() Loc          { return p.Loc }
func (p Punct) Location() Loc          { return p.Loc }
func (p Quote) Location() Loc          { return p.Loc }
func (p *NestedCommand) Location() Loc { return p.Loc }

func (Word) node()           {}
func (Space) node()          {}
func (Punct) node()          {}
func (Quote) node()          {}
func (*NestedCommand) node() {}

func (Word) textPart()           {}
func (Space) textPart()          {}
func (Punct) textPart()          {}
func (Quote) textPart()          {}
func (*NestedCommand) textPart() {}

// TextRun is a sequence of prose parts.
type TextRun struct {
	Parts []TextPart
	Span  source.Span
}

func (*TextRun) node()  {}
func (*TextRun) block() {}

// Empty reports whether the run has no parts.
func (t *TextRun) Empty() bool { return t == nil || len(t.Parts) == 0 }

const (
	openQuote  = "“"
	closeQuote = "”"
)

// String renders the run as plain text. Parts that start on a later
// source line than the previous part are separated by line breaks, one per
// line crossed. Non-space parts on the same line with a gap between their
// spans (an illegal character was skipped there) get one space, so `a@b`
// renders as "a b".
func (t *TextRun) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.writeTo(&b)
	return b.String()
}

func (t *TextRun) writeTo(b *strings.Builder) {
	var line, prevEnd uint32
	prevSpace := false
	for i, part := range t.Parts {
		loc := part.Location()
		pos := loc.Pos
		_, isSpace := part.(Space)
		switch {
		case i == 0:
		case pos.Line > line:
			b.WriteString(strings.Repeat("\n", int(pos.Line-line)))
		case !isSpace && !prevSpace && loc.Span.Start > prevEnd:
			b.WriteByte(' ')
		}
		prevEnd, prevSpace = loc.Span.End, isSpace
		if pos.Line > line {
			line = pos.Line
		}
		switch p := part.(type) {
		case Word:
			b.WriteString(p.Text)
		case Space:
			b.WriteString(p.Text)
		case Punct:
			b.WriteString(p.Text)
		case Quote:
			if p.Open {
				b.WriteString(openQuote)
			} else {
				b.WriteString(closeQuote)
			}
		case *NestedCommand:
			for j := range p.Args {
				p.Args[j].writeTo(b)
			}
		}
	}
}
