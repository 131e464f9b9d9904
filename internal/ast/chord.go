package ast

import (
	"strings"

	"songsheet/internal/source"
	"songsheet/internal/token"
)

// ChordSpec is a chord annotation in a body: *RepeatedChord, *ChordList or
// *GTab.
type ChordSpec interface {
	Block
	chordSpec()
}

// Chord is a chord name assembled from adjacent word and chord-symbol
// tokens, e.g. "Am7", "G/B", "C#".
type Chord struct {
	Name string
	Span source.Span
}

// RepeatedChord is the `^` marker. It stands for the closest preceding
// chord group; see ResolveRepeats.
type RepeatedChord struct {
	Span source.Span
}

// ChordList is a `\[ ... \]` chord group.
type ChordList struct {
	Chords []Chord
	Span   source.Span
}

// Names returns the chord names in order.
func (c *ChordList) Names() []string {
	names := make([]string, len(c.Chords))
	for i, ch := range c.Chords {
		names[i] = ch.Name
	}
	return names
}

func (c *ChordList) String() string {
	return strings.Join(c.Names(), " ")
}

// GTab is `\gtab{chord}{tab}`: a chord together with its guitar
// tablature.
type GTab struct {
	Chord Chord
	Tab   token.Tab
	Span  source.Span
}

func (*Chord) node()         {}
func (*RepeatedChord) node() {}
func (*ChordList) node()     {}
func (*GTab) node()          {}

func (*RepeatedChord) block() {}
func (*ChordList) block()     {}
func (*GTab) block()          {}

func (*RepeatedChord) chordSpec() {}
func (*ChordList) chordSpec()     {}
func (*GTab) chordSpec()          {}
