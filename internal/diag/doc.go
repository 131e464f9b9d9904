// Package diag defines the diagnostic model shared by the lexer and the parser.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form
//     (LEX1001, SYN2003, ...).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing to the issue.
//   - Notes – optional secondary spans, e.g. where an environment was opened.
//
// # Emitting diagnostics
//
// Phases receive a diag.Reporter and never own storage. The lexer reports
// illegal characters and keeps going; the parser reports its single fatal
// error and then stops. diag.BagReporter aggregates diagnostics into a Bag,
// which supports sorting and deduplication before rendering.
//
// Package diag does not perform any formatting beyond the golden form;
// rendering lives in internal/diagfmt.
package diag
