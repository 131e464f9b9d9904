package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"songsheet/internal/config"
	"songsheet/internal/logs"
	"songsheet/internal/observ"
	"songsheet/internal/prof"
	"songsheet/internal/version"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("errors reported")

var rootCmd = &cobra.Command{
	Use:               "songsheet",
	Short:             "Song sheet lexer and parser",
	Long:              `songsheet tokenizes and parses LaTeX-like song sheets with inline chords`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
}

// runState holds the effective settings of the current invocation: config
// file values overridden by explicitly set flags.
type runState struct {
	cfg       config.Config
	cfgPath   string
	useColor  bool
	maxDiag   int
	timings   bool
	timer     *observ.Timer
	logCloser io.Closer
	profile   *prof.Session
}

var state = runState{cfg: config.Default()}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file (0=unlimited)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-file", "", "append JSON log records to this file")
	rootCmd.PersistentFlags().String("config", "", "path to songsheet.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("trace", "", "write a runtime trace to this file")
}

func main() {
	err := rootCmd.Execute()
	// timings and the log file are flushed on failures too
	if closeErr := finishRun(os.Stderr); err == nil {
		err = closeErr
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "songsheet: %v\n", err)
		}
		os.Exit(1)
	}
}

func setupRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	manifest, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	state.cfg = manifest.Config
	state.cfgPath = manifest.Path
	cfg := &state.cfg

	if flags.Changed("color") {
		if cfg.Diagnostics.Color, err = flags.GetString("color"); err != nil {
			return err
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Diagnostics.Max, err = flags.GetInt("max-diagnostics"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if cfg.Log.Level, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	if flags.Changed("log-file") {
		if cfg.Log.File, err = flags.GetString("log-file"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	state.useColor = resolveColor(cfg.Diagnostics.Color, os.Stderr)
	color.NoColor = !resolveColor(cfg.Diagnostics.Color, os.Stdout)
	state.maxDiag = cfg.Diagnostics.Max

	if state.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}
	state.timer = nil
	if state.timings {
		state.timer = observ.NewTimer()
	}

	var profOpts prof.Options
	if profOpts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return err
	}
	if profOpts.Mem, err = flags.GetString("memprofile"); err != nil {
		return err
	}
	if profOpts.Trace, err = flags.GetString("trace"); err != nil {
		return err
	}
	if profOpts.Enabled() {
		if state.profile, err = prof.Start(profOpts); err != nil {
			return err
		}
	}

	logger, closer, err := logs.New(logs.Options{Level: cfg.Log.Level, File: cfg.Log.File, Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	state.logCloser = closer
	slog.SetDefault(logger)
	if state.cfgPath != "" {
		slog.Debug("loaded config", "path", state.cfgPath)
	}
	return nil
}

func loadConfig(path string) (*config.Manifest, error) {
	if path != "" {
		return config.LoadManifest(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, _, err := config.Discover(wd)
	return manifest, err
}

func finishRun(stderr io.Writer) error {
	profErr := state.profile.Stop()
	state.profile = nil
	if state.timings && state.timer != nil {
		fmt.Fprint(stderr, state.timer.Summary())
	}
	closeErr := logs.CloseAll(state.logCloser)
	state.logCloser = nil
	return errors.Join(profErr, closeErr)
}

func resolveColor(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
