package diag

import (
	"testing"

	"songsheet/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.tex", []byte("a\nb\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     SynEnvNameMismatch,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     LexUnknownChar,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error SYN2003 testdata/golden/sample.tex:1:1 first line second\n" +
		"note SYN2003 testdata/golden/sample.tex:2:1 note line\n" +
		"warning LEX1001 testdata/golden/sample.tex:2:1 another"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsWithoutLocation(t *testing.T) {
	fs := source.NewFileSet()
	fs.Add("a.sng", []byte("x"), 0)
	diags := []*Diagnostic{
		NewError(IOLoadFileError, source.Span{}, "failed to load file: permission denied"),
	}
	want := "error IO4001 failed to load file: permission denied"
	if got := FormatShortDiagnostics(diags, fs, false); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
