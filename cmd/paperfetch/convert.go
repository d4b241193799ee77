package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Convert PDF files to Markdown",
	Long: `Convert extracts text from local PDF files and writes Markdown with
YAML frontmatter and a metadata header to <output-dir>/markdown/. Existing
Markdown files are skipped.

With --all, every PDF recorded in the download ledger is converted, using
the metadata saved beside each PDF. Supports the pdftext, docconv, and
markitdown (container-based) backends.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: pdftext, docconv, or markitdown (default from config)")
	convertCmd.Flags().Bool("all", false, "convert every PDF recorded in the ledger")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files, or --all")
	}

	conv, err := newConverter(cmd)
	if err != nil {
		return err
	}

	var result convert.BatchResult
	if all {
		papers, err := ledgerPapers(cmd)
		if err != nil {
			return err
		}
		result = convert.ConvertBatch(ctx, conv, papers, cfg.OutputDir, cmd.OutOrStdout())
	} else {
		result = convert.ConvertPaths(ctx, conv, args, cfg.OutputDir, cmd.OutOrStdout())
	}

	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed conversion", result.Failed)
	}
	return nil
}

// ledgerPapers returns a Paper for every intact ledger entry.
func ledgerPapers(cmd *cobra.Command) ([]types.Paper, error) {
	ledger, err := openLedger(cmd)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, fmt.Errorf("--all needs the download ledger; drop --no-library")
	}
	defer ledger.Close()

	entries, err := ledger.List(cmd.Context())
	if err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(entries))
	for _, e := range entries {
		if !e.Exists() {
			logger.Warn().Str("id", e.Identifier).Str("path", e.Path).Msg("recorded file is missing, skipping")
			continue
		}
		papers = append(papers, entryPaper(e))
	}
	return papers, nil
}
