package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/internal/library"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded papers recorded in the ledger",
	Long: `List prints every download recorded in the ledger, newest first.
Entries whose file is gone or has changed size are marked missing.

--format csl writes the recorded papers as a CSL-YAML bibliography, using
the metadata saved beside each PDF.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().String("format", "table", "output format: table, json, or csl")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	if ledger == nil {
		return fmt.Errorf("list needs the download ledger; drop --no-library")
	}
	defer ledger.Close()

	entries, err := ledger.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "csl":
		papers := make([]types.Paper, 0, len(entries))
		for _, e := range entries {
			papers = append(papers, entryPaper(e))
		}
		return library.FormatCSL(papers, out)
	case "table":
	default:
		return fmt.Errorf("unknown format %q (want table, json, or csl)", format)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No downloads recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FETCHED\tSOURCE\tIDENTIFIER\tSIZE\tPATH")
	for _, e := range entries {
		path := e.Path
		if !e.Exists() {
			path += " (missing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			e.FetchedAt.Local().Format(time.DateTime), e.Source, e.Identifier, e.Size, path)
	}
	return tw.Flush()
}
