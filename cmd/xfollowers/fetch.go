package main

import (
	"os"

	"github.com/spf13/cobra"

	"xfollowers/pkg/auth"
	"xfollowers/pkg/config"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/store"
	"xfollowers/pkg/tracker"
	"xfollowers/pkg/twitter"
	"xfollowers/pkg/ui"
)

var (
	// Fetch command flags
	bearerToken  string
	accountName  string
	cacheDir     string
	topN         int
	columns      []string
	maxRetries   int
	cached       bool
	resumeRun    bool
	forceRestart bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <handle>",
	Short: "Fetch a handle's followers and report the top accounts",
	Long: `Fetch the complete follower list for a Twitter handle, resolve follower
profiles in bulk, cache them to <handle>_followers.csv, and print the
top-N followers ranked by their own follower count.

Followers already present in the cache are skipped, so repeated runs only
pay for what changed. The v1.1 follower endpoints have small rate-limit
windows; interrupted or rate-limited runs can be continued with --resume.

A bearer token is required, from one of:
  - Stored credentials ('xfollowers auth login')
  - The XFOLLOWERS_BEARER_TOKEN environment variable
  - The --bearer-token flag or config file`,
	Example: `  # Fetch and report with default settings
  xfollowers fetch jack

  # Report top 50 with custom columns
  xfollowers fetch jack --top 50 --columns screen_name,followers_count,name

  # Report from the local cache without hitting the API
  xfollowers fetch jack --cached

  # Continue an interrupted run
  xfollowers fetch jack --resume`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&bearerToken, "bearer-token", "", "Twitter API bearer token")
	fetchCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored credential")
	fetchCmd.Flags().StringVarP(&cacheDir, "cache-dir", "d", "", "directory for per-handle cache files")
	fetchCmd.Flags().IntVarP(&topN, "top", "n", 0, "number of top followers to report")
	fetchCmd.Flags().StringSliceVar(&columns, "columns", nil, "report columns, in order")
	fetchCmd.Flags().IntVar(&maxRetries, "max-retries", -1, "retries per failed request (0 disables retrying)")
	fetchCmd.Flags().BoolVar(&cached, "cached", false, "report from the local cache, skip remote fetch")
	fetchCmd.Flags().BoolVar(&resumeRun, "resume", false, "resume from the last checkpoint")
	fetchCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "ignore any existing checkpoint")
}

func runFetch(cmd *cobra.Command, args []string) {
	handle := args[0]

	cfg := loadConfig()

	if needsRemoteFetch(cfg, handle) {
		ensureBearerToken(cfg)
	}

	logger.WithField("handle", handle).Info("starting follower fetch")

	t := tracker.New(cfg)
	if err := t.Run(handle, resumeRun, forceRestart); err != nil {
		logger.WithError(err).WithField("handle", handle).Error("run failed")
		ui.PrintError("Run failed", err.Error())
		os.Exit(1)
	}
}

// needsRemoteFetch reports whether the run will contact the API and
// therefore needs a bearer token. Cache-only runs still fetch when the
// handle has no cache file yet.
func needsRemoteFetch(cfg *config.Config, handle string) bool {
	if !cfg.Fetch.CacheOnly {
		return true
	}
	path := store.CacheFilePath(cfg.Output.CacheDirectory, twitter.SanitizeHandle(handle))
	_, err := os.Stat(path)
	return err != nil
}

// loadConfig builds the effective configuration from flags, env, and files
func loadConfig() *config.Config {
	flags := make(map[string]interface{})
	if bearerToken != "" {
		flags["bearer-token"] = bearerToken
	}
	if cacheDir != "" {
		flags["cache-dir"] = cacheDir
	}
	if topN > 0 {
		flags["top"] = topN
	}
	if len(columns) > 0 {
		flags["columns"] = columns
	}
	if maxRetries >= 0 {
		flags["max-retries"] = maxRetries
	}
	if cached {
		flags["cached"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	return cfg
}

// ensureBearerToken fills in the bearer token from stored credentials
// when the config did not provide one, and exits if none can be found.
func ensureBearerToken(cfg *config.Config) {
	if cfg.Twitter.BearerToken != "" {
		return
	}

	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	account, err := credManager.Retrieve(accountName)
	if err != nil {
		logger.Error("no bearer token found")
		ui.PrintError("No Twitter API bearer token found")
		ui.PrintInfo("To store one securely, run", "xfollowers auth login")
		ui.PrintInfo("Or set", "XFOLLOWERS_BEARER_TOKEN")
		os.Exit(1)
	}

	cfg.Twitter.BearerToken = account.BearerToken
	logger.WithField("account", account.Name).Info("using stored credentials")
}
