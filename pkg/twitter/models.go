package twitter

// CursorStart is the cursor value for the first page of a paginated endpoint.
const CursorStart int64 = -1

// CursorEnd is the cursor value signalling there are no further pages.
const CursorEnd int64 = 0

// FollowerIDsPage represents one page of the followers/ids endpoint
type FollowerIDsPage struct {
	IDs               []string `json:"ids"`
	NextCursor        int64    `json:"next_cursor"`
	NextCursorStr     string   `json:"next_cursor_str"`
	PreviousCursor    int64    `json:"previous_cursor"`
	PreviousCursorStr string   `json:"previous_cursor_str"`
}

// HasNext reports whether another page follows this one
func (p *FollowerIDsPage) HasNext() bool {
	return p.NextCursor != CursorEnd
}

// User represents a Twitter user profile from the users/lookup endpoint
type User struct {
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	Name           string `json:"name"`
	FollowersCount int    `json:"followers_count"`
	// CreatedAt is Twitter's legacy timestamp format,
	// e.g. "Wed Jun 01 12:00:00 +0000 2011"
	CreatedAt string `json:"created_at"`
}

// apiErrorBody is the error envelope Twitter returns on non-200 responses
type apiErrorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
