package tracker

import (
	"fmt"
	"os"

	"xfollowers/pkg/checkpoint"
	"xfollowers/pkg/config"
	"xfollowers/pkg/fetcher"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/ratelimit"
	"xfollowers/pkg/report"
	"xfollowers/pkg/resolver"
	"xfollowers/pkg/retry"
	"xfollowers/pkg/store"
	"xfollowers/pkg/twitter"
	"xfollowers/pkg/ui"
)

// Tracker orchestrates the fetch, resolve, cache, and report pipeline
// for one run. Execution is strictly sequential; the only blocking points
// are rate-limit and pacing waits.
type Tracker struct {
	client        TwitterClient
	config        *config.Config
	logger        logger.Logger
	checkpointDir string
}

// New creates a Tracker backed by the real Twitter API client
func New(cfg *config.Config) *Tracker {
	client := twitter.NewClient(cfg.Twitter.BaseURL, cfg.Twitter.BearerToken, cfg.Twitter.Timeout, logger.GetLogger())
	client.SetFallbackDelay(cfg.RateLimit.FallbackDelay)
	return NewWithClient(cfg, client)
}

// NewWithClient creates a Tracker with an injected API client
func NewWithClient(cfg *config.Config, client TwitterClient) *Tracker {
	return &Tracker{
		client: client,
		config: cfg,
		logger: logger.GetLogger(),
	}
}

// SetCheckpointDir overrides the checkpoint directory, used in tests
func (t *Tracker) SetCheckpointDir(dir string) {
	t.checkpointDir = dir
}

// Report prints the ranked report from the cache without any remote fetch
func (t *Tracker) Report(handle string) error {
	handle = twitter.SanitizeHandle(handle)
	if !twitter.IsValidHandle(handle) {
		return fmt.Errorf("invalid handle: %q", handle)
	}

	st, err := store.NewCSVStore(store.CacheFilePath(t.config.Output.CacheDirectory, handle), t.logger)
	if err != nil {
		return err
	}
	return t.report(handle, st)
}

// Run executes the full pipeline for a handle and prints the ranked report
func (t *Tracker) Run(handle string, resume, forceRestart bool) error {
	handle = twitter.SanitizeHandle(handle)
	if !twitter.IsValidHandle(handle) {
		return fmt.Errorf("invalid handle: %q", handle)
	}

	st, err := store.NewCSVStore(store.CacheFilePath(t.config.Output.CacheDirectory, handle), t.logger)
	if err != nil {
		return err
	}

	if t.config.Fetch.CacheOnly {
		if _, err := os.Stat(st.Path()); err == nil {
			ui.PrintInfo("Cache-only mode", "reporting from "+st.Path())
			return t.report(handle, st)
		}
		ui.PrintWarning("No cache file found, fetching", handle)
	}

	if err := t.fetchAndResolve(handle, st, resume, forceRestart); err != nil {
		return err
	}

	return t.report(handle, st)
}

// fetchAndResolve runs the fetch and resolution phases against the store
func (t *Tracker) fetchAndResolve(handle string, st store.Store, resume, forceRestart bool) error {
	checkpointMgr, err := t.newCheckpointManager(handle)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	var cp *checkpoint.Checkpoint
	if forceRestart && checkpointMgr.Exists() {
		if err := checkpointMgr.Delete(); err != nil {
			t.logger.WithError(err).Warn("failed to delete existing checkpoint")
		}
		ui.PrintInfo("Force restart", "ignoring existing checkpoint")
	} else if resume && checkpointMgr.Exists() {
		cp, err = checkpointMgr.Load()
		if err != nil {
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
	}
	if cp == nil {
		cp, err = checkpointMgr.Create(handle)
		if err != nil {
			return err
		}
	} else {
		ui.PrintInfo("Resuming from checkpoint", fmt.Sprintf("%d IDs pending", len(cp.PendingIDs)))
	}

	known, err := st.LoadExisting()
	if err != nil {
		return err
	}

	limiter := ratelimit.NewTokenBucket(t.config.RateLimit.RequestsPerWindow, t.config.RateLimit.Window)
	retrier := retry.NewRetrier(&retry.Config{
		// MaxRetries counts retries on top of the first attempt;
		// zero means fail on the first error
		MaxAttempts: t.config.RateLimit.MaxRetries + 1,
		Backoff: &retry.ConstantBackoff{
			Delay: t.config.RateLimit.FallbackDelay,
		},
		RetryIf: retry.DefaultRetryIf,
		Logger:  t.logger,
	})

	// Phase 1: walk the follower ID pages, checkpointing each page.
	// Skipped when a resumed checkpoint already finished pagination.
	if !cp.IDFetchDone() {
		f := fetcher.New(t.client, retrier, limiter, t.config.Fetch.PageSize, t.logger)
		f.OnPage(func(nextCursor int64, ids []string) error {
			return checkpointMgr.UpdateCursor(cp, nextCursor, ids)
		})

		if _, err := f.FetchAll(handle, cp.Cursor, known); err != nil {
			// IDs fetched before the failure are checkpointed; a later
			// --resume run picks up from the saved cursor.
			return fmt.Errorf("follower ID fetch failed for @%s: %w", handle, err)
		}
	}

	// Phase 2: resolve the pending backlog in bulk-lookup batches
	pending := filterKnown(cp.PendingIDs, known)
	if len(pending) == 0 {
		ui.PrintInfo("Nothing to resolve", "all followers already cached")
		return checkpointMgr.Delete()
	}

	progress := ui.NewProgress(len(pending))
	processed := 0
	r := resolver.New(t.client, st, retrier, limiter, t.config.Fetch.LookupBatchSize, t.logger)
	r.OnBatch(func(remaining []string) error {
		done := len(pending) - len(remaining)
		progress.Advance(done - processed)
		processed = done
		return checkpointMgr.SetPending(cp, remaining)
	})

	failed, err := r.Resolve(pending)
	progress.Done()
	if err != nil {
		return fmt.Errorf("detail resolution failed for @%s: %w", handle, err)
	}

	if len(failed) > 0 {
		ui.PrintWarning("Unresolvable accounts (suspended or deleted)", len(failed))
		t.logger.WarnWithFields("some followers could not be resolved", map[string]interface{}{
			"handle": handle,
			"failed": len(failed),
		})
	}

	return checkpointMgr.Delete()
}

// report prints the ranked top-N table from the store
func (t *Tracker) report(handle string, st store.Store) error {
	records, err := st.All()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no cached followers for @%s", handle)
	}

	fmt.Println()
	fmt.Print(report.Render(handle, records, t.config.Output.TopN, t.config.Output.Columns))
	return nil
}

func (t *Tracker) newCheckpointManager(handle string) (*checkpoint.Manager, error) {
	if t.checkpointDir != "" {
		return checkpoint.NewManagerIn(t.checkpointDir, handle)
	}
	return checkpoint.NewManager(handle)
}

// filterKnown drops IDs already present in the known set
func filterKnown(ids []string, known map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
