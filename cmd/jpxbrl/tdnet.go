package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nk-xbrl/jpxbrl/pkg/tdnet"
)

var tdnetDate string

var tdnetCmd = &cobra.Command{
	Use:   "tdnet",
	Short: "List TDnet disclosures for a given date",
	Long: `tdnet fetches and parses every page of the TDnet disclosure listing
for the given date (YYYY-MM-DD, default today), printing one line per
disclosure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if tdnetDate != "" {
			parsed, err := time.Parse("2006-01-02", tdnetDate)
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
			date = parsed
		}

		records, err := tdnet.ListDisclosures(cmd.Context(), date)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range records {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", r.Time, r.Code, r.Name, r.Title, r.XBRLURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tdnetCmd)
	tdnetCmd.Flags().StringVar(&tdnetDate, "date", "", "disclosure date (YYYY-MM-DD), defaults to today")
}
