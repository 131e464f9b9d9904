package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0
	// Лексические
	LexInfo         Code = 1000
	LexUnknownChar  Code = 1001
	LexTokenTooLong Code = 1005

	// Парсерные
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynUnexpectedEOF   Code = 2002
	SynEnvNameMismatch Code = 2003
	SynExpectTabSpec   Code = 2004
	SynExpectChord     Code = 2005
	SynTrailingInput   Code = 2006

	// I/O
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	LexInfo:            "Lexer information",
	LexUnknownChar:     "Illegal character",
	LexTokenTooLong:    "Token too long",
	SynInfo:            "Parser information",
	SynUnexpectedToken: "Unexpected token",
	SynUnexpectedEOF:   "Unexpected end of input",
	SynEnvNameMismatch: "Environment name mismatch",
	SynExpectTabSpec:   "Expected tablature spec",
	SynExpectChord:     "Expected chord",
	SynTrailingInput:   "Input after end of song",
	IOLoadFileError:    "Failed to load file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
