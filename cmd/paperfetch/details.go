package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperfetch/internal/fetch"
	"github.com/pdiddy/paperfetch/internal/ident"
	"github.com/pdiddy/paperfetch/internal/library"
	"github.com/pdiddy/paperfetch/internal/semantic"
	"github.com/pdiddy/paperfetch/pkg/types"
)

var detailsCmd = &cobra.Command{
	Use:   "details [paper-id]",
	Short: "Show Semantic Scholar metadata for a paper",
	Long: `Details looks up a paper on Semantic Scholar and prints its metadata:
title, authors, abstract, publication date, DOI, citation count, fields of
study, and the open-access PDF link when there is one.

The identifier may be a Semantic Scholar paper ID, a DOI, an arXiv ID, or a
prefixed external ID such as CorpusId:215416146.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetails,
}

func init() {
	detailsCmd.Flags().String("format", "yaml", "output format: yaml, json, or csl")

	rootCmd.AddCommand(detailsCmd)
}

func runDetails(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "json", "csl":
	default:
		return fmt.Errorf("unknown format %q (want yaml, json, or csl)", format)
	}

	client := semantic.NewClient(cfg.Semantic, logger)
	paper, err := client.Paper(cmd.Context(), ident.ForSource(types.SourceSemantic, args[0]))
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), fetch.Describe(err))
		return fmt.Errorf("looking up %s failed", args[0])
	}

	var data []byte
	switch format {
	case "csl":
		return library.FormatCSL([]types.Paper{*paper}, cmd.OutOrStdout())
	case "json":
		data, err = json.MarshalIndent(paper, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(paper)
	}
	if err != nil {
		return fmt.Errorf("encoding paper: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
