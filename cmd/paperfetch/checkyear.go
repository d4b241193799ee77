package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperfetch/pkg/types"
)

var checkYearCmd = &cobra.Command{
	Use:   "check-year [YYYY-MM-DD]",
	Short: "Report whether a publication date falls before the cutoff year",
	Long: `Check-year prints true when the date's year is strictly before the
cutoff year and false otherwise. Sci-Hub coverage ends in 2022, so the
default cutoff is 2023.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckYear,
}

func init() {
	checkYearCmd.Flags().Int("cutoff", types.DefaultCutoffYear, "cutoff year")

	rootCmd.AddCommand(checkYearCmd)
}

func runCheckYear(cmd *cobra.Command, args []string) error {
	cutoff, _ := cmd.Flags().GetInt("cutoff")

	date, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		return fmt.Errorf("parsing date %q: want YYYY-MM-DD", args[0])
	}

	fmt.Fprintln(cmd.OutOrStdout(), types.PublishedBefore(date, cutoff))
	return nil
}
