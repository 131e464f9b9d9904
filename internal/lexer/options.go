package lexer

import (
	"songsheet/internal/diag"
	"songsheet/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil, тогда ошибки игнорируем (но продолжаем лексить)
	// MaxTokenLen reports LexTokenTooLong for longer tokens; 0 disables the check.
	MaxTokenLen uint32
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}
