package token

import (
	"strconv"
	"strings"
)

// Strings is one character per guitar string, low E first:
// 'O' open, 'X' muted, '0'..'9' fret number.
type Strings [6]byte

// Fingering is one finger digit '0'..'4' per string.
type Fingering [6]byte

// Tab is the tablature descriptor carried by a TabSpec token.
// An absent fret is stored as 0, which is outside the valid 2..9 range;
// consumers check HasFret instead of comparing Fret themselves.
type Tab struct {
	Fret      int // 0 when absent, otherwise 2..9
	Strings   Strings
	Fingering *Fingering
}

// HasFret reports whether the descriptor carries a fret offset.
func (t Tab) HasFret() bool { return t.Fret != 0 }

// String re-renders the canonical source form, e.g. "3: X32010 :032010".
func (t Tab) String() string {
	var b strings.Builder
	if t.HasFret() {
		b.WriteString(strconv.Itoa(t.Fret))
		b.WriteString(": ")
	}
	b.Write(t.Strings[:])
	if t.Fingering != nil {
		b.WriteString(" :")
		b.Write(t.Fingering[:])
	}
	return b.String()
}

// IsStringChar reports whether c is valid in the strings part of a tab.
func IsStringChar(c byte) bool {
	return c == 'O' || c == 'X' || (c >= '0' && c <= '9')
}

// IsFingerChar reports whether c is a valid finger digit.
func IsFingerChar(c byte) bool {
	return c >= '0' && c <= '4'
}
