package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
)

// ===== Работа с рунами поверх Cursor =====

// peekRune читает текущую позицию как руну
func (lx *Lexer) peekRune() (r rune, size int) {
	return lx.runeAt(0)
}

func (lx *Lexer) runeAt(off uint32) (r rune, size int) {
	pos := lx.cursor.Off + off
	if pos >= lx.cursor.Limit {
		return utf8.RuneError, 0
	}
	b := lx.file.Content[pos]
	if b < utf8.RuneSelf { // fast-path ASCII
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.file.Content[pos:lx.cursor.Limit])
}

// bumpRune перемещает курсор на размер текущей руны
func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	if sz == 0 {
		return
	}
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Advance(usz)
}

// wordContinuesAt reports whether a word character sits at offset off.
func (lx *Lexer) wordContinuesAt(off uint32) bool {
	r, sz := lx.runeAt(off)
	return sz > 0 && isWordRune(r)
}

// ===== Классификаторы =====

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\f' || b == '\v'
}

func isPunctByte(b byte) bool {
	switch b {
	case '.', ',', ':', ';', '?', '!', '-':
		return true
	}
	return false
}

func isChordSymbolByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '/' || b == '#' || b == '&' || b == '*'
}

func isFretByte(b byte) bool {
	return b >= '2' && b <= '9'
}

// isIdentRune matches \w: letters, digits, underscore and combining marks.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isWordRune(r rune) bool {
	return r == '\'' || isIdentRune(r)
}
