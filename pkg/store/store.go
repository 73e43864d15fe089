package store

import "time"

// TimestampLayout is the format used for the fetched-at column
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one cached follower profile, keyed by ID
type Record struct {
	// Timestamp is when the profile details were fetched
	Timestamp string
	// ID is the follower's immutable user ID
	ID string
	// ScreenName is the follower's handle
	ScreenName string
	// Name is the follower's display name
	Name string
	// FollowersCount is the follower's own follower count
	FollowersCount int
	// CreatedAt is when the account joined Twitter, in the API's
	// legacy format ("Wed Jun 01 12:00:00 +0000 2011")
	CreatedAt string
}

// Now returns the current time formatted for the Timestamp field
func Now() string {
	return time.Now().Format(TimestampLayout)
}

// Store is durable key-value persistence for follower records.
// Implementations are single-process, single-writer; no locking discipline
// beyond that is provided.
type Store interface {
	// LoadExisting returns the set of IDs already present in the store
	LoadExisting() (map[string]struct{}, error)

	// Upsert writes or overwrites records keyed by ID. Safe to call
	// repeatedly with overlapping keys.
	Upsert(records []Record) error

	// All returns every stored record for reporting
	All() ([]Record, error)
}
