package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagStocks       string
	flagCompany      string
	flagLimit        int
	flagSourceLimit  int
	flagTimeInterval string
	flagSince        string
	flagRefresh      bool
	flagConfig       string
	flagDebug        bool
)

var rootCmd = &cobra.Command{
	Use:   "stockwire",
	Short: "Terminal financial news aggregator",
	Long: `stockwire aggregates financial news from RSS feeds, scores each article
against stock tickers, attaches live-ish prices, and opens a two-pane
terminal browser.`,
	RunE: runNews,
}

func init() {
	rootCmd.Flags().StringVar(&flagStocks, "stocks", "", "comma-separated ticker symbols to filter news for (e.g., AAPL,MSFT)")
	rootCmd.Flags().StringVar(&flagCompany, "company", "", "filter news by company name (e.g., 'Apple'); resolved to tickers via the catalog")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 25, "maximum number of articles to show")
	rootCmd.Flags().IntVar(&flagSourceLimit, "source-limit", 0, "maximum number of feed sources to process")
	rootCmd.Flags().StringVar(&flagTimeInterval, "time-interval", "", "only show articles from a window (today, last-hour, last-4-hours, last-12-hours, last-24-hours, last-15-minutes, last-30-minutes)")
	rootCmd.Flags().StringVar(&flagSince, "since", "", "only show articles newer than this age (e.g., 24h, 7d)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force refresh feeds even if the cache is fresh")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable verbose logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockwire %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
