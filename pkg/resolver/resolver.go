package resolver

import (
	"errors"

	errs "xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/ratelimit"
	"xfollowers/pkg/retry"
	"xfollowers/pkg/store"
	"xfollowers/pkg/twitter"
)

// Client is the slice of the Twitter client the resolver needs
type Client interface {
	LookupUsers(ids []string) ([]twitter.User, error)
}

// BatchFunc is called after each persisted batch with the IDs still
// unresolved. Used for checkpointing and progress display.
type BatchFunc func(remaining []string) error

// Resolver turns follower IDs into cached profile records via the bulk
// users/lookup endpoint.
type Resolver struct {
	client    Client
	store     store.Store
	retrier   *retry.Retrier
	limiter   ratelimit.Limiter
	batchSize int
	logger    logger.Logger
	onBatch   BatchFunc
}

// New creates a Resolver. The retrier carries the same backoff policy as
// the fetcher; limiter may be nil to disable client-side pacing.
func New(client Client, st store.Store, retrier *retry.Retrier, limiter ratelimit.Limiter, batchSize int, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	if batchSize <= 0 || batchSize > twitter.MaxLookupBatch {
		batchSize = twitter.MaxLookupBatch
	}

	return &Resolver{
		client:    client,
		store:     st,
		retrier:   retrier,
		limiter:   limiter,
		batchSize: batchSize,
		logger:    log,
	}
}

// OnBatch registers a callback invoked after every persisted batch
func (r *Resolver) OnBatch(fn BatchFunc) {
	r.onBatch = fn
}

// Resolve fetches profile details for the given IDs in batches and upserts
// each batch into the store before moving on. Duplicate IDs are collapsed.
//
// IDs the API does not return a profile for (suspended or deleted accounts)
// are collected and returned without aborting the run. A fatal error aborts
// the remaining batches; everything already resolved stays persisted.
func (r *Resolver) Resolve(ids []string) ([]string, error) {
	ids = dedupe(ids)
	var failed []string

	r.logger.InfoWithFields("resolving follower details", map[string]interface{}{
		"ids":        len(ids),
		"batch_size": r.batchSize,
	})

	for start := 0; start < len(ids); start += r.batchSize {
		end := start + r.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		var users []twitter.User
		err := r.retrier.Do(func() error {
			if r.limiter != nil {
				r.limiter.Wait()
			}
			var reqErr error
			users, reqErr = r.client.LookupUsers(batch)
			return reqErr
		})
		if err != nil {
			// A 404 means no ID in the batch resolved to a live account;
			// record the batch as failed and keep going.
			var apiErr *errs.Error
			if errors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeNotFound {
				failed = append(failed, batch...)
				r.logger.WarnWithFields("no live accounts in batch", map[string]interface{}{
					"batch_size": len(batch),
				})
				continue
			}
			return failed, err
		}

		records := make([]store.Record, 0, len(users))
		resolved := make(map[string]struct{}, len(users))
		timestamp := store.Now()
		for _, u := range users {
			records = append(records, store.Record{
				Timestamp:      timestamp,
				ID:             u.IDStr,
				ScreenName:     u.ScreenName,
				Name:           u.Name,
				FollowersCount: u.FollowersCount,
				CreatedAt:      u.CreatedAt,
			})
			resolved[u.IDStr] = struct{}{}
		}

		if err := r.store.Upsert(records); err != nil {
			return failed, err
		}

		// IDs missing from the lookup response are suspended or deleted
		for _, id := range batch {
			if _, ok := resolved[id]; !ok {
				failed = append(failed, id)
			}
		}

		if r.onBatch != nil {
			if err := r.onBatch(ids[end:]); err != nil {
				return failed, err
			}
		}
	}

	r.logger.InfoWithFields("follower details resolved", map[string]interface{}{
		"resolved": len(ids) - len(failed),
		"failed":   len(failed),
	})

	return failed, nil
}

// dedupe collapses duplicate IDs preserving first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
