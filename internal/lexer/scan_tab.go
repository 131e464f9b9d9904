package lexer

import (
	"songsheet/internal/token"
)

const tabWidth = 6

// scanTabSpec matches `([2-9]: )?[OX0-9]{6}( :[0-4]{6})?`.
// Optional parts are taken only when complete, and the whole match must not
// be followed by a word character, so 5- or 7-character runs never match.
func (lx *Lexer) scanTabSpec() (token.Token, bool) {
	var tab token.Tab
	off := uint32(0)

	if isFretByte(lx.cursor.PeekAt(0)) &&
		lx.cursor.PeekAt(1) == ':' &&
		lx.cursor.PeekAt(2) == ' ' &&
		lx.hasTabStrings(3) {
		tab.Fret = int(lx.cursor.PeekAt(0) - '0')
		off = 3
	}

	if !lx.hasTabStrings(off) {
		return token.Token{}, false
	}
	for i := range uint32(tabWidth) {
		tab.Strings[i] = lx.cursor.PeekAt(off + i)
	}
	off += tabWidth

	if lx.cursor.PeekAt(off) == ' ' && lx.cursor.PeekAt(off+1) == ':' && lx.hasFingering(off+2) {
		var fing token.Fingering
		for i := range uint32(tabWidth) {
			fing[i] = lx.cursor.PeekAt(off + 2 + i)
		}
		tab.Fingering = &fing
		off += 2 + tabWidth
	}

	if lx.wordContinuesAt(off) {
		return token.Token{}, false
	}
	lx.cursor.Advance(off)
	return token.Token{Kind: token.TabSpec, Tab: &tab}, true
}

func (lx *Lexer) hasTabStrings(off uint32) bool {
	for i := range uint32(tabWidth) {
		if !token.IsStringChar(lx.cursor.PeekAt(off + i)) {
			return false
		}
	}
	return !lx.wordContinuesAt(off + tabWidth)
}

func (lx *Lexer) hasFingering(off uint32) bool {
	for i := range uint32(tabWidth) {
		if !token.IsFingerChar(lx.cursor.PeekAt(off + i)) {
			return false
		}
	}
	return !lx.wordContinuesAt(off + tabWidth)
}
