package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"songsheet/internal/diag"
	"songsheet/internal/diagfmt"
	"songsheet/internal/driver"
	"songsheet/internal/source"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file|directory|->",
	Short: "Check song sheets and report diagnostics only",
	Long:  `Diag lexes (and by default parses) song sheets and prints the diagnostics without the document trees`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagCmd.Flags().String("stages", "syntax", "stages to run (tokenize|syntax)")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type diagOptions struct {
	format    string
	stages    string
	jobs      int
	withNotes bool
	fullPath  bool
}

func readDiagOptions(cmd *cobra.Command) (diagOptions, error) {
	var opts diagOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch opts.format {
	case "pretty", "json", "short":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	if opts.stages, err = cmd.Flags().GetString("stages"); err != nil {
		return opts, fmt.Errorf("failed to get stages flag: %w", err)
	}
	switch opts.stages {
	case "tokenize", "syntax":
	default:
		return opts, fmt.Errorf("unknown stages: %s (want tokenize|syntax)", opts.stages)
	}
	if opts.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if cmd.Flags().Changed("jobs") {
		if opts.jobs < 0 {
			return opts, fmt.Errorf("--jobs must be >= 0, got %d", opts.jobs)
		}
	} else {
		opts.jobs = state.cfg.Parse.Jobs
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	return opts, nil
}

func runDiag(cmd *cobra.Command, args []string) error {
	opts, err := readDiagOptions(cmd)
	if err != nil {
		return err
	}
	done := state.timer.Track("diag " + args[0])
	bag, fs, err := collectDiagnostics(cmd, args[0], opts)
	done("")
	if err != nil {
		return err
	}
	bag.Sort()
	bag.Dedup()

	if err := writeDiagnostics(cmd.OutOrStdout(), bag, fs, opts); err != nil {
		return ignoreBrokenPipe(err)
	}
	if bag.HasErrors() {
		return errReported
	}
	return nil
}

// collectDiagnostics runs the requested stages over target and returns
// every diagnostic in one bag.
func collectDiagnostics(cmd *cobra.Command, target string, opts diagOptions) (*diag.Bag, *source.FileSet, error) {
	all := diag.NewBag(0)
	if target != "-" {
		st, err := os.Stat(target)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if st.IsDir() {
			dirOpts := driver.DirOptions{MaxDiagnostics: state.maxDiag, Jobs: opts.jobs, Timer: state.timer}
			if opts.stages == "tokenize" {
				fs, results, err := driver.TokenizeDir(cmd.Context(), target, dirOpts)
				if err != nil {
					return nil, nil, err
				}
				for _, r := range results {
					all.Merge(r.Bag)
				}
				return all, fs, nil
			}
			fs, results, err := driver.ParseDir(cmd.Context(), target, dirOpts)
			if err != nil {
				return nil, nil, err
			}
			for _, r := range results {
				all.Merge(r.Bag)
			}
			return all, fs, nil
		}
	}

	if opts.stages == "tokenize" {
		res, err := tokenizeInput(cmd.InOrStdin(), []string{target})
		if err != nil {
			return nil, nil, fmt.Errorf("tokenization failed: %w", err)
		}
		all.Merge(res.Bag)
		return all, res.FileSet, nil
	}
	res, err := parseTarget(cmd, target)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing failed: %w", err)
	}
	all.Merge(res.Bag)
	return all, res.FileSet, nil
}

func writeDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts diagOptions) error {
	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch opts.format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     opts.withNotes,
		})
	case "short":
		out := diag.FormatShortDiagnostics(bag.Items(), fs, opts.withNotes)
		if out == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, out)
		return err
	default:
		if bag.Len() == 0 {
			return nil
		}
		return diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     state.useColor,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: opts.withNotes,
		})
	}
}
