package fetcher

import (
	"xfollowers/pkg/logger"
	"xfollowers/pkg/ratelimit"
	"xfollowers/pkg/retry"
	"xfollowers/pkg/twitter"
)

// Client is the slice of the Twitter client the fetcher needs
type Client interface {
	FetchFollowerIDs(handle string, cursor int64, count int) (*twitter.FollowerIDsPage, error)
}

// PageFunc is called after each successfully fetched page with the cursor
// to resume from and the new IDs the page contributed. Used for checkpointing.
type PageFunc func(nextCursor int64, ids []string) error

// Fetcher walks the cursor-paginated followers/ids endpoint and
// accumulates the complete follower ID sequence for a handle.
type Fetcher struct {
	client   Client
	retrier  *retry.Retrier
	limiter  ratelimit.Limiter
	pageSize int
	logger   logger.Logger
	onPage   PageFunc
}

// New creates a Fetcher. The retrier carries the backoff policy shared
// with the resolver; limiter may be nil to disable client-side pacing.
func New(client Client, retrier *retry.Retrier, limiter ratelimit.Limiter, pageSize int, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if pageSize <= 0 || pageSize > twitter.MaxPageSize {
		pageSize = twitter.MaxPageSize
	}

	return &Fetcher{
		client:   client,
		retrier:  retrier,
		limiter:  limiter,
		pageSize: pageSize,
		logger:   log,
	}
}

// OnPage registers a callback invoked after every fetched page
func (f *Fetcher) OnPage(fn PageFunc) {
	f.onPage = fn
}

// FetchAll retrieves the follower ID sequence for handle, starting at
// startCursor (twitter.CursorStart for a fresh run). IDs present in known
// are filtered out of the result.
//
// On a fatal error the IDs accumulated so far are still returned alongside
// the error so partial progress is not lost.
func (f *Fetcher) FetchAll(handle string, startCursor int64, known map[string]struct{}) ([]string, error) {
	var ids []string
	cursor := startCursor
	page := 0

	f.logger.InfoWithFields("fetching follower IDs", map[string]interface{}{
		"handle": handle,
		"cursor": cursor,
	})

	for cursor != twitter.CursorEnd {
		page++

		var resp *twitter.FollowerIDsPage
		err := f.retrier.Do(func() error {
			if f.limiter != nil {
				f.limiter.Wait()
			}
			var reqErr error
			resp, reqErr = f.client.FetchFollowerIDs(handle, cursor, f.pageSize)
			return reqErr
		})
		if err != nil {
			f.logger.ErrorWithFields("follower ID fetch aborted", map[string]interface{}{
				"handle":       handle,
				"page":         page,
				"ids_fetched":  len(ids),
				"error":        err.Error(),
			})
			return ids, err
		}

		pageIDs := resp.IDs
		if len(known) > 0 {
			pageIDs = filterKnown(pageIDs, known)
		}
		ids = append(ids, pageIDs...)
		cursor = resp.NextCursor

		f.logger.DebugWithFields("fetched follower IDs page", map[string]interface{}{
			"handle":      handle,
			"page":        page,
			"page_ids":    len(resp.IDs),
			"new_ids":     len(pageIDs),
			"next_cursor": cursor,
		})

		if f.onPage != nil {
			if err := f.onPage(cursor, pageIDs); err != nil {
				return ids, err
			}
		}
	}

	f.logger.InfoWithFields("follower ID fetch complete", map[string]interface{}{
		"handle": handle,
		"pages":  page,
		"ids":    len(ids),
	})

	return ids, nil
}

// filterKnown drops IDs already present in the known set
func filterKnown(ids []string, known map[string]struct{}) []string {
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			filtered = append(filtered, id)
		}
	}
	return filtered
}
