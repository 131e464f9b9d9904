package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"songsheet/internal/diagfmt"
	"songsheet/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] [file|-]",
	Short: "Print the tokens of a song sheet",
	Long:  `Tokenize reads a song sheet (stdin when the argument is "-" or absent) and prints one token per line`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "plain", "output format (plain|pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "plain", "pretty", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	done := state.timer.Track("tokenize")
	result, err := tokenizeInput(cmd.InOrStdin(), args)
	done("")
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if result.Bag.Len() > 0 {
		result.Bag.Sort()
		opts := diagfmt.PrettyOpts{Color: state.useColor, Context: 2, ShowNotes: true}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), result.Bag, result.FileSet, opts); err != nil {
			return err
		}
	}

	// закрытый pipe не считается ошибкой: `songsheet tokenize | head`
	signal.Ignore(syscall.SIGPIPE)
	return ignoreBrokenPipe(writeTokens(cmd.OutOrStdout(), format, result))
}

func tokenizeInput(stdin io.Reader, args []string) (*driver.TokenizeResult, error) {
	if len(args) == 0 || args[0] == "-" {
		return driver.TokenizeReader("<stdin>", stdin, state.maxDiag)
	}
	return driver.Tokenize(args[0], state.maxDiag)
}

func writeTokens(w io.Writer, format string, result *driver.TokenizeResult) error {
	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(w, result.Tokens, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(w, result.Tokens)
	default:
		return diagfmt.FormatTokensPlain(w, result.Tokens)
	}
}

func ignoreBrokenPipe(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
