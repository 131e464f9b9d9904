package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"songsheet/internal/diag"
	"songsheet/internal/lexer"
	"songsheet/internal/source"
	"songsheet/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.tex", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return lx, reporter
}

// collectAllTokens собирает все токены без EOF
func collectAllTokens(lx *lexer.Lexer) []token.Token {
	tokens := make([]token.Token, 0)
	for tok := range lexer.All(lx) {
		if tok.Kind == token.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// expectTokens проверяет последовательность видов и текстов токенов
func expectTokens(t *testing.T, input string, expected []token.Kind, texts ...string) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
		if i < len(texts) && tok.Text != texts[i] {
			t.Errorf("Token %d: expected text %q, got %q", i, texts[i], tok.Text)
		}
	}
}

// expectSingleToken проверяет, что вход создаёт ровно один токен
func expectSingleToken(t *testing.T, input string, expectedKind token.Kind) token.Token {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)
	if len(tokens) != 1 {
		t.Fatalf("Expected one token for %q, got %v (errors: %v)", input, tokensToString(tokens), reporter.ErrorMessages())
	}
	if tokens[0].Kind != expectedKind {
		t.Errorf("Expected kind %v for %q, got %v", expectedKind, input, tokens[0].Kind)
	}
	if tokens[0].Text != input {
		t.Errorf("Expected text %q, got %q", input, tokens[0].Text)
	}
	return tokens[0]
}

func TestSingleTokens(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"``", token.BeginQuote},
		{"''", token.EndQuote},
		{`"`, token.EndQuote},
		{`\begin`, token.Begin},
		{`\end`, token.End},
		{`\[`, token.ChordOpen},
		{`\]`, token.ChordClose},
		{"^", token.RepeatChord},
		{"{", token.LBrace},
		{"}", token.RBrace},
		{"[", token.LBracket},
		{"]", token.RBracket},
		{",", token.Comma},
		{"=", token.Equals},
		{`\gtab`, token.GTab},
		{`\textbf`, token.Command},
		{`\beginning`, token.Command},
		{`\endverse`, token.Command},
		{" \t\f\v ", token.Space},
		{".", token.Punct},
		{":", token.Punct},
		{";", token.Punct},
		{"?", token.Punct},
		{"!", token.Punct},
		{"-", token.Punct},
		{"7", token.ChordSymbol},
		{"0", token.ChordSymbol},
		{"/", token.ChordSymbol},
		{"#", token.ChordSymbol},
		{"&", token.ChordSymbol},
		{"*", token.ChordSymbol},
		{"Hello", token.Word},
		{"don't", token.Word},
		{"'tis", token.Word},
		{"Am7", token.Word},
		{"snake_case", token.Word},
		{"Café", token.Word},
		{"naïve", token.Word},
		{"песня", token.Word},
		{"X32010", token.TabSpec},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind)
		})
	}
}

func TestChordSymbolsSplitFromWords(t *testing.T) {
	expectTokens(t, "G/B", []token.Kind{token.Word, token.ChordSymbol, token.Word}, "G", "/", "B")
	expectTokens(t, "C#", []token.Kind{token.Word, token.ChordSymbol}, "C", "#")
	// цифра в начале: символ аккорда, дальше слово
	expectTokens(t, "2nd", []token.Kind{token.ChordSymbol, token.Word}, "2", "nd")
}

func TestIllegalCharacterRecovery(t *testing.T) {
	lx, reporter := makeTestLexer("a@b")
	tokens := collectAllTokens(lx)

	want := []token.Kind{token.Word, token.Illegal, token.Word}
	if len(tokens) != len(want) {
		t.Fatalf("expected 3 lexer outcomes, got %v", tokensToString(tokens))
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: expected %v, got %v", i, k, tokens[i].Kind)
		}
	}
	if tokens[1].Text != "@" {
		t.Errorf("illegal token must carry the character, got %q", tokens[1].Text)
	}
	if len(reporter.diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", reporter.ErrorMessages())
	}
	d := reporter.diagnostics[0]
	if d.Code != diag.LexUnknownChar || d.Severity != diag.SevError {
		t.Errorf("unexpected diagnostic %v", reporter.ErrorMessages())
	}
	if !strings.Contains(d.Message, `"@"`) || !strings.Contains(d.Message, "line 1") {
		t.Errorf("diagnostic must name the character and line, got %q", d.Message)
	}
	if d.Primary.Start != 1 || d.Primary.End != 2 {
		t.Errorf("unexpected span %v", d.Primary)
	}
}

func TestIllegalMultibyteSkipsWholeRune(t *testing.T) {
	lx, reporter := makeTestLexer("a€b")
	tokens := collectAllTokens(lx)
	if len(tokens) != 3 || tokens[1].Text != "€" {
		t.Fatalf("unexpected tokens %v", tokensToString(tokens))
	}
	if len(reporter.diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", reporter.ErrorMessages())
	}
}

func TestLoneBackslashIsIllegal(t *testing.T) {
	expectTokens(t, `\ x`, []token.Kind{token.Illegal, token.Space, token.Word}, `\`, " ", "x")
	expectTokens(t, "`x", []token.Kind{token.Illegal, token.Word}, "`", "x")
}

func TestLineBreaksProduceNoTokens(t *testing.T) {
	lx, _ := makeTestLexer("ab\n\n\n  cd\nef")
	tokens := collectAllTokens(lx)
	expected := []struct {
		kind token.Kind
		line uint32
		col  uint32
	}{
		{token.Word, 1, 1},
		{token.Space, 4, 1},
		{token.Word, 4, 3},
		{token.Word, 5, 1},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("unexpected tokens %v", tokensToString(tokens))
	}
	for i, e := range expected {
		tok := tokens[i]
		if tok.Kind != e.kind || tok.Pos.Line != e.line || tok.Pos.Col != e.col {
			t.Errorf("token %d: got %v at %d:%d, want %v at %d:%d",
				i, tok.Kind, tok.Pos.Line, tok.Pos.Col, e.kind, e.line, e.col)
		}
	}
}

func TestPositionsAgreeWithFileSet(t *testing.T) {
	input := "\\begin{song}{T}\n  Hello \\[C\\]\n\n\\end{song}\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("song.tex", []byte(input))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	for tok := range lexer.All(lx) {
		start, _ := fs.Resolve(tok.Span)
		if start != tok.Pos {
			t.Errorf("%v: lexer position %+v, file set position %+v", tok, tok.Pos, start)
		}
	}
}

func TestSongHeaderTokens(t *testing.T) {
	input := "\\begin{song}{My Song}[key={G}]\nHello \\[C G\\] world\n\\end{song}"
	expectTokens(t, input, []token.Kind{
		token.Begin, token.LBrace, token.Word, token.RBrace,
		token.LBrace, token.Word, token.Space, token.Word, token.RBrace,
		token.LBracket, token.Word, token.Equals, token.LBrace, token.Word, token.RBrace, token.RBracket,
		token.Word, token.Space, token.ChordOpen, token.Word, token.Space, token.Word, token.ChordClose,
		token.Space, token.Word,
		token.End, token.LBrace, token.Word, token.RBrace,
	})
}

func TestQuotesAndPunctuation(t *testing.T) {
	expectTokens(t, "``Hi,'' she said.", []token.Kind{
		token.BeginQuote, token.Word, token.Comma, token.EndQuote,
		token.Space, token.Word, token.Space, token.Word, token.Punct,
	})
}

func TestClosingQuoteEndsWord(t *testing.T) {
	expectTokens(t, "``rock'n'roll''", []token.Kind{
		token.BeginQuote, token.Word, token.EndQuote,
	}, "``", "rock'n'roll", "''")
	expectTokens(t, "'tis", []token.Kind{token.Word}, "'tis")
}

func TestValidSongHasNoIllegalTokens(t *testing.T) {
	input := "\\begin{song}{Amazing ``Grace''}[by={John Newton}, key={G}]\n" +
		"\\begin{verse}{One}\n" +
		"A\\[G\\]mazing grace! How \\[C G/B\\]sweet the sound ^ that saved;\n" +
		"\\gtab{G7}{3: X32010 :032010}\n" +
		"\\end{verse}\n" +
		"\\begin{chorus*}\n" +
		"\\textbf{Refrain} -- \\[Am7 D#\\] & more\n" +
		"\\end{chorus*}\n" +
		"\\end{song}\n"
	lx, reporter := makeTestLexer(input)
	for _, tok := range collectAllTokens(lx) {
		if tok.Kind == token.Illegal {
			t.Errorf("unexpected illegal token %q at %d:%d", tok.Text, tok.Pos.Line, tok.Pos.Col)
		}
	}
	if len(reporter.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.ErrorMessages())
	}
}

func TestRelexingTokenTextKeepsKind(t *testing.T) {
	input := "\\begin{song}{Title ``quoted''}[k={v}]\nHello, world! \\[C#m7 G/B\\] ^ \\gtab{C}{X32010} 3: OX2233 :012340\n\\textbf{x} -- 12 & \"\n\\end{song}"
	lx, _ := makeTestLexer(input)
	for _, tok := range collectAllTokens(lx) {
		relexed, _ := makeTestLexer(tok.Text)
		tokens := collectAllTokens(relexed)
		if len(tokens) != 1 || tokens[0].Kind != tok.Kind {
			t.Errorf("re-lexing %v produced %v", tok, tokensToString(tokens))
		}
	}
}

func TestLazySequenceStopsEarly(t *testing.T) {
	lx, _ := makeTestLexer("one two three")
	var seen []string
	for tok := range lexer.All(lx) {
		seen = append(seen, tok.Text)
		if len(seen) == 2 {
			break
		}
	}
	if strings.Join(seen, "|") != "one| " {
		t.Fatalf("unexpected prefix %q", seen)
	}
	// лексер продолжает с места остановки
	if next := lx.Next(); next.Text != "two" {
		t.Fatalf("expected to resume at %q, got %q", "two", next.Text)
	}
}

func TestEOFIsSticky(t *testing.T) {
	lx, _ := makeTestLexer("x")
	lx.Next()
	for range 3 {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("expected EOF, got %v", tok.Kind)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if lx.Peek().Text != "a" || lx.Peek().Text != "a" {
		t.Fatal("Peek must be idempotent")
	}
	if lx.Next().Text != "a" || lx.Next().Kind != token.Space {
		t.Fatal("Next after Peek returned wrong tokens")
	}
}

func TestTokenize(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.tex", []byte("a b"))
	tokens := lexer.Tokenize(fs.Get(id), lexer.Options{})
	if len(tokens) != 4 || tokens[3].Kind != token.EOF {
		t.Fatalf("unexpected tokens %v", tokensToString(tokens))
	}
}

func TestTokenTooLong(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("long.tex", []byte(strings.Repeat("a", 9)+" "+strings.Repeat("b", 8)))
	bag := diag.NewBag(4)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}, MaxTokenLen: 8})

	tokens := collectAllTokens(lx)
	if len(tokens) != 3 || tokens[0].Kind != token.Word {
		t.Fatalf("long tokens are still produced, got %v", tokensToString(tokens))
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexTokenTooLong {
		t.Fatalf("expected a single LexTokenTooLong, got %d diagnostics", bag.Len())
	}
}
