package tracker

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/checkpoint"
	"xfollowers/pkg/config"
	errs "xfollowers/pkg/errors"
	"xfollowers/pkg/store"
	"xfollowers/pkg/twitter"
)

// fakeClient serves a fixed follower set as pages of pageSize IDs and
// resolves lookups from a generated profile per ID.
type fakeClient struct {
	ids      []string
	pageSize int

	fetchCalls  int
	lookupCalls int

	// failLookupOn makes the Nth lookup call (1-based) return a fatal error
	failLookupOn int

	// rateLimitFetch makes every ID fetch return a 429
	rateLimitFetch bool
}

func newFakeClient(total, pageSize int) *fakeClient {
	ids := make([]string, total)
	for i := range ids {
		ids[i] = strconv.Itoa(1000 + i)
	}
	return &fakeClient{ids: ids, pageSize: pageSize}
}

func (f *fakeClient) FetchFollowerIDs(handle string, cursor int64, count int) (*twitter.FollowerIDsPage, error) {
	f.fetchCalls++

	if f.rateLimitFetch {
		return nil, &errs.Error{
			Type:       errs.ErrorTypeRateLimit,
			Message:    "rate limit exceeded",
			Code:       429,
			RetryAfter: time.Millisecond,
		}
	}

	page := 0
	if cursor != twitter.CursorStart {
		page = int(cursor)
	}

	start := page * f.pageSize
	end := start + f.pageSize
	if end > len(f.ids) {
		end = len(f.ids)
	}

	next := twitter.CursorEnd
	if end < len(f.ids) {
		next = int64(page + 1)
	}

	return &twitter.FollowerIDsPage{
		IDs:        f.ids[start:end],
		NextCursor: next,
	}, nil
}

func (f *fakeClient) LookupUsers(ids []string) ([]twitter.User, error) {
	f.lookupCalls++
	if f.failLookupOn > 0 && f.lookupCalls == f.failLookupOn {
		return nil, &errs.Error{Type: errs.ErrorTypeAuth, Message: "bearer token rejected", Code: 401}
	}

	users := make([]twitter.User, len(ids))
	for i, id := range ids {
		users[i] = twitter.User{
			IDStr:          id,
			ScreenName:     "user" + id,
			Name:           "User " + id,
			FollowersCount: len(id),
			CreatedAt:      "Wed Jun 01 12:00:00 +0000 2011",
		}
	}
	return users, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.CacheDirectory = t.TempDir()
	cfg.Fetch.PageSize = 10
	cfg.Fetch.LookupBatchSize = 10
	cfg.RateLimit.RequestsPerWindow = 1000
	cfg.RateLimit.Window = time.Minute
	cfg.RateLimit.FallbackDelay = time.Millisecond
	return cfg
}

func newTestTracker(t *testing.T, cfg *config.Config, client TwitterClient) *Tracker {
	t.Helper()
	tr := NewWithClient(cfg, client)
	tr.SetCheckpointDir(t.TempDir())
	return tr
}

func cachedRecords(t *testing.T, cfg *config.Config, handle string) []store.Record {
	t.Helper()
	st, err := store.NewCSVStore(store.CacheFilePath(cfg.Output.CacheDirectory, handle), nil)
	require.NoError(t, err)
	records, err := st.All()
	require.NoError(t, err)
	return records
}

func TestRunFetchesAndCachesAllFollowers(t *testing.T) {
	cfg := testConfig(t)
	client := newFakeClient(25, 10)
	tr := newTestTracker(t, cfg, client)

	require.NoError(t, tr.Run("jack", false, false))

	records := cachedRecords(t, cfg, "jack")
	require.Len(t, records, 25)
	assert.Equal(t, "1000", records[0].ID)
	assert.Equal(t, "user1000", records[0].ScreenName)

	// 3 ID pages, 3 lookup batches of 10+10+5
	assert.Equal(t, 3, client.fetchCalls)
	assert.Equal(t, 3, client.lookupCalls)
}

func TestRunDeletesCheckpointOnSuccess(t *testing.T) {
	cfg := testConfig(t)
	client := newFakeClient(5, 10)
	tr := NewWithClient(cfg, client)

	cpDir := t.TempDir()
	tr.SetCheckpointDir(cpDir)

	require.NoError(t, tr.Run("jack", false, false))

	mgr, err := checkpoint.NewManagerIn(cpDir, "jack")
	require.NoError(t, err)
	assert.False(t, mgr.Exists())
}

func TestSecondRunSkipsKnownFollowers(t *testing.T) {
	cfg := testConfig(t)
	client := newFakeClient(20, 10)
	tr := newTestTracker(t, cfg, client)

	require.NoError(t, tr.Run("jack", false, false))
	firstLookups := client.lookupCalls

	require.NoError(t, tr.Run("jack", false, false))

	// ID pages are re-walked but no known follower is looked up again
	assert.Greater(t, client.fetchCalls, 2)
	assert.Equal(t, firstLookups, client.lookupCalls)

	records := cachedRecords(t, cfg, "jack")
	assert.Len(t, records, 20)
}

func TestResumeAfterResolutionFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRetries = 1
	client := newFakeClient(30, 10)
	client.failLookupOn = 2

	tr := NewWithClient(cfg, client)
	cpDir := t.TempDir()
	tr.SetCheckpointDir(cpDir)

	err := tr.Run("jack", false, false)
	require.Error(t, err)

	// First batch is cached, the rest stays pending in the checkpoint
	records := cachedRecords(t, cfg, "jack")
	assert.Len(t, records, 10)

	mgr, merr := checkpoint.NewManagerIn(cpDir, "jack")
	require.NoError(t, merr)
	require.True(t, mgr.Exists())
	cp, merr := mgr.Load()
	require.NoError(t, merr)
	assert.True(t, cp.IDFetchDone())
	assert.Len(t, cp.PendingIDs, 20)

	client.failLookupOn = 0
	require.NoError(t, tr.Run("jack", true, false))

	records = cachedRecords(t, cfg, "jack")
	assert.Len(t, records, 30)
	assert.False(t, mgr.Exists())
}

func TestForceRestartIgnoresCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRetries = 1
	client := newFakeClient(20, 10)
	client.failLookupOn = 1

	tr := NewWithClient(cfg, client)
	cpDir := t.TempDir()
	tr.SetCheckpointDir(cpDir)

	require.Error(t, tr.Run("jack", false, false))

	client.failLookupOn = 0
	fetchesBefore := client.fetchCalls
	require.NoError(t, tr.Run("jack", true, true))

	// Restart re-walks pagination from the start
	assert.Equal(t, fetchesBefore+2, client.fetchCalls)
	records := cachedRecords(t, cfg, "jack")
	assert.Len(t, records, 20)
}

func TestZeroRetriesFailsOnFirstRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRetries = 0
	client := newFakeClient(10, 10)
	client.rateLimitFetch = true
	tr := newTestTracker(t, cfg, client)

	err := tr.Run("jack", false, false)
	require.Error(t, err)
	assert.Equal(t, 1, client.fetchCalls)
}

func TestRateLimitedFetchRetriesUpToCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRetries = 2
	client := newFakeClient(10, 10)
	client.rateLimitFetch = true
	tr := newTestTracker(t, cfg, client)

	err := tr.Run("jack", false, false)
	require.Error(t, err)
	// First attempt plus two retries
	assert.Equal(t, 3, client.fetchCalls)
}

func TestCacheOnlyReportsWithoutFetching(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fetch.CacheOnly = true

	st, err := store.NewCSVStore(store.CacheFilePath(cfg.Output.CacheDirectory, "jack"), nil)
	require.NoError(t, err)
	require.NoError(t, st.Upsert([]store.Record{
		{Timestamp: store.Now(), ID: "1", ScreenName: "alice", FollowersCount: 9},
	}))

	client := newFakeClient(10, 10)
	tr := newTestTracker(t, cfg, client)

	require.NoError(t, tr.Run("jack", false, false))
	assert.Zero(t, client.fetchCalls)
	assert.Zero(t, client.lookupCalls)
}

func TestCacheOnlyFallsBackToFetch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fetch.CacheOnly = true

	client := newFakeClient(5, 10)
	tr := newTestTracker(t, cfg, client)

	require.NoError(t, tr.Run("jack", false, false))
	assert.Equal(t, 1, client.fetchCalls)
	assert.Len(t, cachedRecords(t, cfg, "jack"), 5)
}

func TestReportRequiresCache(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg, newFakeClient(0, 10))

	err := tr.Report("jack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cached followers")
	assert.Zero(t, tr.client.(*fakeClient).fetchCalls)
}

func TestRunRejectsInvalidHandle(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg, newFakeClient(0, 10))

	for _, handle := range []string{"", "way_too_long_for_twitter", "has space"} {
		err := tr.Run(handle, false, false)
		require.Error(t, err, fmt.Sprintf("handle %q", handle))
		assert.Contains(t, err.Error(), "invalid handle")
	}
}
