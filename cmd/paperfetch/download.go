package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/internal/fetch"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [identifiers...]",
	Short: "Download paper PDFs by DOI or Semantic Scholar ID",
	Long: `Download resolves each identifier to a PDF and saves it in the output
directory. With --source scihub (the default) identifiers are DOIs, bare or
as doi.org URLs; with --source semantic they are Semantic Scholar paper IDs,
DOIs, arXiv IDs, or prefixed IDs such as CorpusId:215416146. With --source
auto, DOIs go to Sci-Hub and everything else to Semantic Scholar.

One line is printed per identifier: the saved path, or a message starting
with "Error". Papers already in the ledger are not downloaded again unless
--force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("source", types.SourceSciHub, "paper source: scihub, semantic, or auto")
	downloadCmd.Flags().Bool("force", false, "download even when the ledger already has the paper")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sourceName, _ := cmd.Flags().GetString("source")
	force, _ := cmd.Flags().GetBool("force")

	sources, err := newSourceSet(sourceName, convert.NewPDFTextConverter())
	if err != nil {
		return err
	}
	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, arg := range args {
		src, id := sources.resolve(arg)
		if !force {
			if e, ok := cachedEntry(ctx, ledger, src.Name(), id); ok {
				logger.Info().Str("id", id).Str("path", e.Path).Msg("skipped: already downloaded")
				fmt.Fprintln(out, e.Path)
				continue
			}
		}

		paper, result := fetch.DownloadPaper(ctx, src, id, cfg.OutputDir)
		fmt.Fprintln(out, result)
		if fetch.IsError(result) {
			failed++
			continue
		}
		recordDownload(ctx, ledger, id, *paper)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d paper(s) failed to download", failed, len(args))
	}
	return nil
}
