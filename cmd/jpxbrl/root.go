package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nk-xbrl/jpxbrl/internal/applog"
	"github.com/nk-xbrl/jpxbrl/pkg/tdnet"
)

var (
	cacheDir  string
	rateLimit float64
	devLog    bool

	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "jpxbrl",
	Short: "jpxbrl reconstructs hierarchical reports from Japanese TDnet/JPX XBRL filings",
	Long: `jpxbrl builds the dimension-aware report tree underlying a financial
statement section of a Japanese listed-company XBRL filing: it parses a
filing's presentation, definition, and calculation linkbases, enriches them
against the taxonomy schema and label linkbase, and resolves the instance
document's facts down to exactly one value per report leaf.

Use the 'tree' subcommand to inspect a linkbase's structure, 'resolve' to
run the full fact-resolution pipeline, and 'tdnet' to list same-day
disclosures from TDnet.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := applog.Sugared(devLog)
		if err != nil {
			return fmt.Errorf("configure logger: %w", err)
		}
		logger = l
		tdnet.SetLogger(l)
		return nil
	},
}

func init() {
	bi, ok := debug.ReadBuildInfo()
	if ok {
		rootCmd.Version = bi.Main.Version
	}

	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", ".jpxbrl-cache", "directory for the on-disk document cache")
	rootCmd.PersistentFlags().Float64Var(&rateLimit, "rate-limit", 2, "outbound HTTP requests per second")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "use human-readable development logging instead of JSON")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
