package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"songsheet/internal/driver"
	"songsheet/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [file|-]...",
	Short: "Rewrite song sheets in canonical layout",
	Long:  `Fmt parses each song sheet (stdin when no file or "-" is given) and prints it in canonical layout`,
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "rewrite files in place instead of printing them")
	fmtCmd.Flags().Bool("check", false, "list files whose layout differs and fail if any")
	fmtCmd.Flags().Int("indent", 0, "spaces per nesting level (default from config)")
	fmtCmd.Flags().Bool("tabs", false, "indent with tabs")
}

type fmtOptions struct {
	write bool
	check bool
	opt   format.Options
}

func readFmtOptions(cmd *cobra.Command) (fmtOptions, error) {
	opts := fmtOptions{opt: format.Options{IndentWidth: state.cfg.Format.Indent, UseTabs: state.cfg.Format.Tabs}}
	var err error
	if opts.write, err = cmd.Flags().GetBool("write"); err != nil {
		return opts, fmt.Errorf("failed to get write flag: %w", err)
	}
	if opts.check, err = cmd.Flags().GetBool("check"); err != nil {
		return opts, fmt.Errorf("failed to get check flag: %w", err)
	}
	if opts.write && opts.check {
		return opts, fmt.Errorf("fmt: --write cannot be used with --check")
	}
	if cmd.Flags().Changed("indent") {
		if opts.opt.IndentWidth, err = cmd.Flags().GetInt("indent"); err != nil {
			return opts, fmt.Errorf("failed to get indent flag: %w", err)
		}
		if opts.opt.IndentWidth < 1 {
			return opts, fmt.Errorf("fmt: --indent must be positive, got %d", opts.opt.IndentWidth)
		}
	}
	if cmd.Flags().Changed("tabs") {
		if opts.opt.UseTabs, err = cmd.Flags().GetBool("tabs"); err != nil {
			return opts, fmt.Errorf("failed to get tabs flag: %w", err)
		}
	}
	return opts, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	opts, err := readFmtOptions(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	var failed, changed bool
	for _, path := range args {
		if path == "-" && opts.write {
			return fmt.Errorf("fmt: cannot rewrite stdin in place")
		}
		done := state.timer.Track("fmt " + path)
		result, err := parseTarget(cmd, path)
		done("")
		if err != nil {
			return fmt.Errorf("formatting failed: %w", err)
		}
		if err := printDiagnostics(cmd.ErrOrStderr(), result.Bag, result.FileSet); err != nil {
			return err
		}
		if result.Err != nil {
			failed = true
			continue
		}
		formatted, err := format.FormatSong(result.File, result.Song, opts.opt)
		if err != nil {
			return fmt.Errorf("fmt: %s: %w", path, err)
		}
		differs := !bytes.Equal(formatted, result.File.Content)
		slog.Debug("formatted", "path", path, "changed", differs)

		switch {
		case opts.check:
			if differs {
				changed = true
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), result.File.Path); err != nil {
					return err
				}
			}
		case opts.write:
			if differs {
				if err := rewriteFile(path, formatted); err != nil {
					return err
				}
			}
		default:
			if _, err := cmd.OutOrStdout().Write(formatted); err != nil {
				return ignoreBrokenPipe(err)
			}
		}
	}

	if failed {
		return errReported
	}
	if changed {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}

func parseTarget(cmd *cobra.Command, path string) (*driver.ParseResult, error) {
	if path == "-" {
		return driver.ParseReader(cmd.Context(), "<stdin>", cmd.InOrStdin(), state.maxDiag)
	}
	return driver.Parse(cmd.Context(), path, state.maxDiag)
}

// rewriteFile replaces path keeping its permission bits.
func rewriteFile(path string, data []byte) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
