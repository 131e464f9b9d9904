package diagfmt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"songsheet/internal/diag"
	"songsheet/internal/diagfmt"
	"songsheet/internal/driver"
	"songsheet/internal/source"
)

const demoSong = "\\begin{song}{Demo}[key={G}]\n" +
	"\\begin{verse}\n" +
	"Hello \\[C G\\] world ^\n" +
	"\\gtab{C}{X32010}\n" +
	"\\end{verse}\n" +
	"\\end{song}\n"

const mismatchSong = "\\begin{song}{T}\n\\begin{verse}\nla la\n\\end{chorus}\n\\end{song}"

func parse(t *testing.T, text string) *driver.ParseResult {
	t.Helper()
	return driver.ParseText(context.Background(), "mem.sng", text, 0)
}

func TestPrettyWithoutColor(t *testing.T) {
	res := parse(t, mismatchSong)
	if res.Err == nil {
		t.Fatal("expected a parse error")
	}
	var buf bytes.Buffer
	err := diagfmt.Pretty(&buf, res.Bag, res.FileSet, diagfmt.PrettyOpts{ShowNotes: true})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "mem.sng:4:6: ERROR [SYN2003]: ") {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != ` 4 | \end{chorus}` {
		t.Fatalf("source line = %q", lines[1])
	}
	if lines[2] != "   |      ^~~~~~" {
		t.Fatalf("caret line = %q", lines[2])
	}
	if !strings.Contains(lines[3], "note:") || !strings.HasSuffix(lines[3], "environment opened here") {
		t.Fatalf("note line = %q", lines[3])
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("color escapes in uncolored output")
	}
}

func TestPrettyContextLines(t *testing.T) {
	res := parse(t, mismatchSong)
	var buf bytes.Buffer
	if err := diagfmt.Pretty(&buf, res.Bag, res.FileSet, diagfmt.PrettyOpts{Context: 2}); err != nil {
		t.Fatal(err)
	}
	want := " 2 | \\begin{verse}\n 3 | la la\n 4 | \\end{chorus}\n"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("context missing:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "note:") {
		t.Fatal("notes printed although ShowNotes is off")
	}
}

func TestPrettyLoadErrorHasNoLocation(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "open missing.sng: no such file or directory"))

	var buf bytes.Buffer
	if err := diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	want := "ERROR [IO4001]: open missing.sng: no such file or directory\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestDiagnosticsJSON(t *testing.T) {
	res := parse(t, mismatchSong)
	var buf bytes.Buffer
	opts := diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true}
	if err := diagfmt.JSON(&buf, res.Bag, res.FileSet, opts); err != nil {
		t.Fatal(err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("output = %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Code != "SYN2003" || d.Severity != "ERROR" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Location.File != "mem.sng" || d.Location.StartLine != 4 || d.Location.StartCol != 6 {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestDiagnosticsJSONMax(t *testing.T) {
	bag := diag.NewBag(0)
	for range 3 {
		bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{}, "illegal character"))
	}
	out := diagfmt.BuildDiagnosticsOutput(bag, nil, diagfmt.JSONOpts{Max: 2})
	if len(out.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(out.Diagnostics))
	}
	if out.Diagnostics[0].Location.File != "" {
		t.Fatalf("nil file set must leave file empty, got %q", out.Diagnostics[0].Location.File)
	}
}

func TestFormatTokensPlain(t *testing.T) {
	res, err := driver.TokenizeReader("<stdin>", strings.NewReader(`\gtab{C}{X32010}`), 0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensPlain(&buf, res.Tokens); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != `GTAB \gtab` || lines[5] != "TAB_SPEC X32010" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestFormatTokensPretty(t *testing.T) {
	res, err := driver.TokenizeReader("<stdin>", strings.NewReader("la \\[C\\]"), 0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensPretty(&buf, res.Tokens, res.FileSet); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(res.Tokens) {
		t.Fatalf("got %d lines for %d tokens:\n%s", len(lines), len(res.Tokens), buf.String())
	}
	if !strings.HasPrefix(lines[0], "   1: WORD ") || !strings.HasSuffix(lines[0], "at 1:1-1:3") {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "EOF") {
		t.Fatalf("last line = %q", lines[len(lines)-1])
	}
}

func TestFormatTokensJSON(t *testing.T) {
	res, err := driver.TokenizeReader("<stdin>", strings.NewReader("3: X32010 :032010"), 0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensJSON(&buf, res.Tokens); err != nil {
		t.Fatal(err)
	}
	var out []diagfmt.TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Tab == nil {
		t.Fatalf("tokens = %+v", out)
	}
	if tab := out[0].Tab; tab.Fret != 3 || tab.Strings != "X32010" || tab.Fingering != "032010" {
		t.Fatalf("tab = %+v", tab)
	}
}

func TestFormatSongTree(t *testing.T) {
	res := parse(t, demoSong)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	var buf bytes.Buffer
	if err := diagfmt.FormatSongTree(&buf, res.Song, res.FileSet); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `Song "Demo" (1:1)`) {
		t.Fatalf("root line:\n%s", out)
	}
	for _, want := range []string{
		`├─ TextRun title "Demo"`,
		`├─ Options`,
		`│  └─ KeyValue key = "G"`,
		`└─ Environment verse (2:1)`,
		`   ├─ TextRun "Hello"`,
		`   ├─ ChordList [C G]`,
		`   ├─ TextRun "world"`,
		`   ├─ RepeatedChord -> [C G]`,
		`   └─ GTab C = "X32010"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Word") {
		t.Fatalf("word-level parts must be folded:\n%s", out)
	}
}

func TestFormatSongJSON(t *testing.T) {
	res := parse(t, demoSong)
	var buf bytes.Buffer
	if err := diagfmt.FormatSongJSON(&buf, res.Song, res.FileSet); err != nil {
		t.Fatal(err)
	}
	var root diagfmt.NodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if root.Type != "Song" || len(root.Children) != 3 {
		t.Fatalf("root = %+v", root)
	}
	env := root.Children[2]
	if env.Name != "verse" || len(env.Children) != 5 {
		t.Fatalf("environment = %+v", env)
	}
	gtab := env.Children[4]
	if gtab.Fields["strings"] != "X32010" {
		t.Fatalf("gtab fields = %v", gtab.Fields)
	}
	if _, ok := gtab.Fields["fret"]; ok {
		t.Fatal("fret must be omitted when absent")
	}
}

func TestFormatSongMsgpack(t *testing.T) {
	res := parse(t, demoSong)
	var buf bytes.Buffer
	if err := diagfmt.FormatSongMsgpack(&buf, res.Song, res.FileSet); err != nil {
		t.Fatal(err)
	}
	var root map[string]any
	if err := msgpack.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if root["type"] != "Song" || root["text"] != "Demo" {
		t.Fatalf("root = %v", root)
	}
	children, ok := root["children"].([]any)
	if !ok || len(children) != 3 {
		t.Fatalf("children = %#v", root["children"])
	}
	env, ok := children[2].(map[string]any)
	if !ok || env["name"] != "verse" {
		t.Fatalf("environment = %#v", children[2])
	}
}
