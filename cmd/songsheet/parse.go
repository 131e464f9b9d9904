package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"songsheet/internal/diag"
	"songsheet/internal/diagfmt"
	"songsheet/internal/driver"
	"songsheet/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file|directory|->",
	Short: "Parse song sheets and print their document tree",
	Long:  `Parse analyzes a song file, stdin ("-"), or every song file in a directory and prints the document trees`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (tree|json|msgpack)")
	parseCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	parseCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
}

type parseOptions struct {
	format string
	jobs   int
	ui     uiMode
}

func readParseOptions(cmd *cobra.Command) (parseOptions, error) {
	opts := parseOptions{format: state.cfg.Parse.Format, jobs: state.cfg.Parse.Jobs}
	var err error
	if cmd.Flags().Changed("format") {
		if opts.format, err = cmd.Flags().GetString("format"); err != nil {
			return opts, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if cmd.Flags().Changed("jobs") {
		if opts.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return opts, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	switch opts.format {
	case "tree", "json", "msgpack":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	opts.ui, err = readUIMode(uiValue)
	return opts, err
}

func runParse(cmd *cobra.Command, args []string) error {
	opts, err := readParseOptions(cmd)
	if err != nil {
		return err
	}
	target := args[0]
	out := cmd.OutOrStdout()

	if target == "-" {
		done := state.timer.Track("parse <stdin>")
		result, err := driver.ParseReader(cmd.Context(), "<stdin>", cmd.InOrStdin(), state.maxDiag)
		done("")
		if err != nil {
			return fmt.Errorf("parsing failed: %w", err)
		}
		return emitSingle(cmd, out, opts.format, result)
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		done := state.timer.Track("parse " + target)
		result, err := driver.Parse(cmd.Context(), target, state.maxDiag)
		done("")
		if err != nil {
			return fmt.Errorf("parsing failed: %w", err)
		}
		return emitSingle(cmd, out, opts.format, result)
	}
	return parseDirectory(cmd, out, target, opts)
}

func emitSingle(cmd *cobra.Command, out io.Writer, format string, result *driver.ParseResult) error {
	if err := printDiagnostics(cmd.ErrOrStderr(), result.Bag, result.FileSet); err != nil {
		return err
	}
	if result.Err != nil {
		if result.Bag.Len() == 0 {
			// лимит диагностик исчерпан: печатаем саму ошибку
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:%v\n", result.File.Path, result.Err)
		}
		return errReported
	}
	switch format {
	case "json":
		return diagfmt.FormatSongJSON(out, result.Song, result.FileSet)
	case "msgpack":
		return diagfmt.FormatSongMsgpack(out, result.Song, result.FileSet)
	default:
		return diagfmt.FormatSongTree(out, result.Song, result.FileSet)
	}
}

func parseDirectory(cmd *cobra.Command, out io.Writer, dir string, opts parseOptions) error {
	dirOpts := driver.DirOptions{
		MaxDiagnostics: state.maxDiag,
		Jobs:           opts.jobs,
		Timer:          state.timer,
	}

	var (
		fs      *source.FileSet
		results []driver.ParseDirResult
		err     error
	)
	if shouldUseTUI(opts.ui) {
		files, listErr := driver.ListSongFiles(dir)
		if listErr != nil {
			return fmt.Errorf("parsing failed: %w", listErr)
		}
		fs, results, err = runParseDirWithUI(cmd.Context(), "parsing "+dir, dir, files, dirOpts)
	} else {
		fs, results, err = driver.ParseDir(cmd.Context(), dir, dirOpts)
	}
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	failed := false
	for _, r := range results {
		if err := printDiagnostics(cmd.ErrOrStderr(), r.Bag, fs); err != nil {
			return err
		}
		if r.Err != nil {
			failed = true
		}
	}

	if err := emitDirectory(out, opts.format, fs, results); err != nil {
		return err
	}
	if failed {
		return errReported
	}
	return nil
}

// displayPath shows directory results relative to the parsed directory.
func displayPath(fs *source.FileSet, r driver.ParseDirResult) string {
	if rel, err := source.RelativePath(r.Path, fs.BaseDir()); err == nil {
		return rel
	}
	return r.Path
}

func emitDirectory(out io.Writer, format string, fs *source.FileSet, results []driver.ParseDirResult) error {
	switch format {
	case "json", "msgpack":
		output := make(map[string]*diagfmt.NodeOutput, len(results))
		for _, r := range results {
			if r.Song == nil {
				output[displayPath(fs, r)] = nil
				continue
			}
			node := diagfmt.BuildSongOutput(r.Song, fs)
			output[displayPath(fs, r)] = &node
		}
		if format == "msgpack" {
			enc := msgpack.NewEncoder(out)
			enc.SetSortMapKeys(true)
			return enc.Encode(output)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	default:
		first := true
		for _, r := range results {
			if r.Song == nil {
				continue
			}
			if !first {
				if _, err := fmt.Fprintln(out); err != nil {
					return err
				}
			}
			first = false
			if _, err := fmt.Fprintf(out, "== %s ==\n", displayPath(fs, r)); err != nil {
				return err
			}
			if err := diagfmt.FormatSongTree(out, r.Song, fs); err != nil {
				return err
			}
		}
		return nil
	}
}

func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Sort()
	bag.Dedup()
	opts := diagfmt.PrettyOpts{Color: state.useColor, Context: 2, ShowNotes: true}
	return diagfmt.Pretty(w, bag, fs, opts)
}
