package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

// builtinSeeds cover every token kind and the usual failure shapes.
var builtinSeeds = []string{
	"",
	"\\begin{song}{T}\\end{song}",
	"\\begin{song}{My Song}\nHello \\[C G\\] world\n\\end{song}\n",
	"\\begin{song}{T}[key1={a},key2={b}] ... \\end{song}",
	"\\begin{song}{T}\\begin{verse*}{Intro}[x={1}]\\[Am\\] ^ ``la'' \\end{verse*}\\end{song}",
	"\\begin{song}{T}\\gtab{C}{3: X32010 :032010}\\gtab Em {022000}\\end{song}",
	"\\begin{song}{T}\\textbf{bold \\emph{x}}\\capo{2}{3}\\end{song}",
	"\\begin{song}{T}\n\\begin{verse}\nla la\n\\end{chorus}\n\\end{song}",
	"\\begin{song}{T}\\[\\]\\end{song}",
	"\\begin{song}{T}\\gtab{C}{}\\end{song}",
	"\\begin{song}{T}[k=v]\\end{song}",
	"\\begin{song}{T}\\end{song} trailing",
	"a@b#c$",
	"\\begin{song",
	"\\[C\\] ]]]] {{{{",
	"XO0000 :01234 2:X32010",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все файлы песен
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".sng" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
