package tracker

import "xfollowers/pkg/twitter"

// TwitterClient defines the interface for the Twitter API operations
// the tracker depends on
type TwitterClient interface {
	FetchFollowerIDs(handle string, cursor int64, count int) (*twitter.FollowerIDsPage, error)
	LookupUsers(ids []string) ([]twitter.User, error)
}
