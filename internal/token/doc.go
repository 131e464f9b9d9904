// Package token defines lexical token kinds for song-sheet markup.
// Invariants:
//   - Token.Text is the exact source text of the token.
//   - Token.Span matches Text exactly (Start..End).
//   - Line breaks are not tokens; they only advance Token.Pos.Line.
//   - TabSpec is the only kind whose value is a structured record (Token.Tab).
//   - `\gtab` has its own kind; every other backslash identifier is Command.
package token
