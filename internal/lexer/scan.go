package lexer

import (
	"songsheet/internal/token"
)

// scan выбирает правило по текущему байту. Порядок проверок повторяет
// приоритет лексических классов: литералы, tab spec, команды, пробелы,
// пунктуация, символы аккордов, слова.
func (lx *Lexer) scan() token.Token {
	ch := lx.cursor.Peek()

	switch ch {
	case '`':
		if lx.cursor.PeekAt(1) == '`' {
			lx.cursor.Advance(2)
			return token.Token{Kind: token.BeginQuote}
		}
		return lx.scanIllegal()
	case '\'':
		if lx.cursor.PeekAt(1) == '\'' {
			lx.cursor.Advance(2)
			return token.Token{Kind: token.EndQuote}
		}
		// одиночный апостроф начинает слово
		return lx.scanWord()
	case '"':
		lx.cursor.Bump()
		return token.Token{Kind: token.EndQuote}
	case '\\':
		return lx.scanBackslash()
	case '^':
		lx.cursor.Bump()
		return token.Token{Kind: token.RepeatChord}
	case '{', '}', '[', ']', ',', '=':
		lx.cursor.Bump()
		return token.Token{Kind: literalKind(ch)}
	}

	if isFretByte(ch) || token.IsStringChar(ch) {
		if tok, ok := lx.scanTabSpec(); ok {
			return tok
		}
	}

	switch {
	case isSpaceByte(ch):
		for isSpaceByte(lx.cursor.Peek()) && !lx.cursor.EOF() {
			lx.cursor.Bump()
		}
		return token.Token{Kind: token.Space}
	case isPunctByte(ch):
		lx.cursor.Bump()
		return token.Token{Kind: token.Punct}
	case isChordSymbolByte(ch):
		lx.cursor.Bump()
		return token.Token{Kind: token.ChordSymbol}
	}

	if r, _ := lx.peekRune(); isWordRune(r) {
		return lx.scanWord()
	}
	return lx.scanIllegal()
}

func literalKind(ch byte) token.Kind {
	switch ch {
	case '{':
		return token.LBrace
	case '}':
		return token.RBrace
	case '[':
		return token.LBracket
	case ']':
		return token.RBracket
	case ',':
		return token.Comma
	default:
		return token.Equals
	}
}

// scanBackslash handles \[ \] \begin \end \gtab and \name.
func (lx *Lexer) scanBackslash() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	switch lx.cursor.Peek() {
	case '[':
		lx.cursor.Bump()
		return token.Token{Kind: token.ChordOpen}
	case ']':
		lx.cursor.Bump()
		return token.Token{Kind: token.ChordClose}
	}

	nameStart := lx.cursor.Off
	for {
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentRune(r) {
			break
		}
		lx.bumpRune()
	}
	if lx.cursor.Off == nameStart {
		// одинокий '\' это недопустимый символ
		lx.cursor.Reset(start)
		return lx.scanIllegal()
	}

	switch string(lx.file.Content[nameStart:lx.cursor.Off]) {
	case "begin":
		return token.Token{Kind: token.Begin}
	case "end":
		return token.Token{Kind: token.End}
	case "gtab":
		return token.Token{Kind: token.GTab}
	default:
		return token.Token{Kind: token.Command}
	}
}

// scanWord consumes a maximal run of word characters and apostrophes.
// A doubled apostrophe is a closing quote and ends the word.
func (lx *Lexer) scanWord() token.Token {
	start := lx.cursor.Off
	for {
		r, sz := lx.peekRune()
		if sz == 0 || !isWordRune(r) {
			break
		}
		if r == '\'' && lx.cursor.PeekAt(1) == '\'' && lx.cursor.Off > start {
			break
		}
		lx.bumpRune()
	}
	return token.Token{Kind: token.Word}
}

// scanIllegal skips exactly one character (a whole UTF-8 sequence).
func (lx *Lexer) scanIllegal() token.Token {
	lx.bumpRune()
	return token.Token{Kind: token.Illegal}
}
