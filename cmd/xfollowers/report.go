package main

import (
	"os"

	"github.com/spf13/cobra"

	"xfollowers/pkg/logger"
	"xfollowers/pkg/tracker"
	"xfollowers/pkg/ui"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <handle>",
	Short: "Print the top followers from the local cache",
	Long: `Print the ranked top-N follower report from the local cache without
contacting the API. Equivalent to 'fetch --cached' for a handle whose
cache file already exists.`,
	Example: `  # Report from cache with default settings
  xfollowers report jack

  # Top 100, custom columns
  xfollowers report jack --top 100 --columns screen_name,followers_count`,
	Args: cobra.ExactArgs(1),
	Run:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&cacheDir, "cache-dir", "d", "", "directory for per-handle cache files")
	reportCmd.Flags().IntVarP(&topN, "top", "n", 0, "number of top followers to report")
	reportCmd.Flags().StringSliceVar(&columns, "columns", nil, "report columns, in order")
}

func runReport(cmd *cobra.Command, args []string) {
	handle := args[0]

	cached = true
	cfg := loadConfig()

	t := tracker.New(cfg)
	if err := t.Report(handle); err != nil {
		logger.WithError(err).WithField("handle", handle).Error("report failed")
		ui.PrintError("Report failed", err.Error())
		os.Exit(1)
	}
}
