package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/store"
)

func recordsWithCounts(counts ...int) []store.Record {
	records := make([]store.Record, len(counts))
	for i, c := range counts {
		records[i] = store.Record{
			ID:             string(rune('a' + i)),
			ScreenName:     "user" + string(rune('a'+i)),
			FollowersCount: c,
		}
	}
	return records
}

func TestTopNRanksDescending(t *testing.T) {
	records := recordsWithCounts(5, 1, 9, 9, 2)

	top := TopN(records, 2)
	require.Len(t, top, 2)

	// The two records with count 9, in their original relative order
	assert.Equal(t, 9, top[0].FollowersCount)
	assert.Equal(t, 9, top[1].FollowersCount)
	assert.Equal(t, "userc", top[0].ScreenName)
	assert.Equal(t, "userd", top[1].ScreenName)
}

func TestTopNLargerThanSet(t *testing.T) {
	records := recordsWithCounts(3, 7)

	top := TopN(records, 10)
	require.Len(t, top, 2)
	assert.Equal(t, 7, top[0].FollowersCount)
	assert.Equal(t, 3, top[1].FollowersCount)
}

func TestTopNDoesNotMutateInput(t *testing.T) {
	records := recordsWithCounts(1, 3, 2)
	_ = TopN(records, 3)

	assert.Equal(t, 1, records[0].FollowersCount)
	assert.Equal(t, 3, records[1].FollowersCount)
	assert.Equal(t, 2, records[2].FollowersCount)
}

func TestRenderSelectsColumns(t *testing.T) {
	records := []store.Record{
		{
			ID:             "1",
			ScreenName:     "alice",
			Name:           "Alice",
			FollowersCount: 1234567,
			CreatedAt:      "Wed Jun 01 12:00:00 +0000 2011",
		},
	}

	out := Render("jack", records, 5, []string{"screen_name", "followers_count"})

	assert.Contains(t, out, "Top 1 Accounts Following @jack")
	assert.Contains(t, out, "Screen Name")
	assert.Contains(t, out, "Followers Count")
	assert.NotContains(t, out, "Joined Twitter")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "1,234,567")
}

func TestRenderUnknownColumnsFallBack(t *testing.T) {
	records := recordsWithCounts(1)

	out := Render("jack", records, 1, []string{"bogus"})
	assert.Contains(t, out, "Screen Name")
	assert.Contains(t, out, "Followers Count")
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", formatCount(0))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "1,000", formatCount(1000))
	assert.Equal(t, "12,345,678", formatCount(12345678))
}

func TestFormatJoined(t *testing.T) {
	assert.Equal(t, "Wed Jun 01, 2011", formatJoined("Wed Jun 01 12:00:00 +0000 2011"))
	assert.Equal(t, "N/A", formatJoined("not a date"))
	assert.Equal(t, "N/A", formatJoined(""))
}
