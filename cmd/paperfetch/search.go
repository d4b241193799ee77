package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/fetch"
	"github.com/pdiddy/paperfetch/internal/library"
	"github.com/pdiddy/paperfetch/internal/semantic"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search Semantic Scholar for papers",
	Long: `Search queries the Semantic Scholar Graph API. Query words are joined
with spaces. Use --year to restrict the publication year, either a single
year (2021) or a range (2019-2022).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("year", "", "publication year or range, e.g. 2021 or 2019-2022")
	searchCmd.Flags().Int("max", 10, "maximum number of results (1-100)")
	searchCmd.Flags().String("format", "text", "output format: text, json, or csl")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetString("year")
	maxResults, _ := cmd.Flags().GetInt("max")
	format, _ := cmd.Flags().GetString("format")
	query := strings.Join(args, " ")
	switch format {
	case "text", "json", "csl":
	default:
		return fmt.Errorf("unknown format %q (want text, json, or csl)", format)
	}

	client := semantic.NewClient(cfg.Semantic, logger)
	papers, err := client.Search(cmd.Context(), query, year, maxResults)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), fetch.Describe(err))
		return fmt.Errorf("search failed")
	}
	logger.Info().Str("query", query).Int("results", len(papers)).Msg("search complete")

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	case "csl":
		return library.FormatCSL(papers, cmd.OutOrStdout())
	default:
		printPapers(cmd.OutOrStdout(), papers)
		return nil
	}
}

func printPapers(w io.Writer, papers []types.Paper) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}
	for i, p := range papers {
		fmt.Fprintf(w, "%d. %s", i+1, p.Title)
		if !p.PublishedDate.IsZero() {
			fmt.Fprintf(w, " (%d)", p.PublishedDate.Year())
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   id: %s\n", p.ID)
		if len(p.Authors) > 0 {
			fmt.Fprintf(w, "   authors: %s\n", strings.Join(p.Authors, ", "))
		}
		if p.DOI != "" {
			fmt.Fprintf(w, "   doi: %s\n", p.DOI)
		}
		if p.HasPDF() {
			fmt.Fprintf(w, "   pdf: %s\n", p.PDFURL)
		}
	}
}
