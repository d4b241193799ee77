package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/internal/fetch"
	"github.com/pdiddy/paperfetch/internal/library"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var readCmd = &cobra.Command{
	Use:   "read [identifier]",
	Short: "Download a paper and print its text as Markdown",
	Long: `Read downloads the paper (or reuses the copy recorded in the ledger),
extracts its text with the configured conversion backend, and prints Markdown
beginning with a metadata header.

A PDF without extractable text prints a notice with the saved path instead.
Failures print a message starting with "Error" and exit non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().String("source", types.SourceSciHub, "paper source: scihub, semantic, or auto")
	readCmd.Flags().String("backend", "", "conversion backend: pdftext, docconv, or markitdown (default from config)")
	readCmd.Flags().Bool("force", false, "download even when the ledger already has the paper")

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sourceName, _ := cmd.Flags().GetString("source")
	force, _ := cmd.Flags().GetBool("force")

	conv, err := newConverter(cmd)
	if err != nil {
		return err
	}
	sources, err := newSourceSet(sourceName, conv)
	if err != nil {
		return err
	}
	src, id := sources.resolve(args[0])
	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	var result string
	e, cached := library.Entry{}, false
	if !force {
		e, cached = cachedEntry(ctx, ledger, src.Name(), id)
	}
	if cached {
		logger.Info().Str("id", id).Str("path", e.Path).Msg("reading recorded download")
		result = readLocal(ctx, conv, e)
	} else {
		result = fetch.Read(ctx, src, id, cfg.OutputDir)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	if fetch.IsError(result) {
		return fmt.Errorf("reading %s failed", args[0])
	}
	return nil
}

// readLocal extracts a recorded PDF, taking the header from its metadata
// sidecar when one exists.
func readLocal(ctx context.Context, conv convert.Converter, e library.Entry) string {
	md, err := convert.Extract(ctx, conv, e.Path, convert.HeaderFromPaper(entryPaper(e)))
	if err != nil {
		return fetch.Describe(err)
	}
	return md
}
