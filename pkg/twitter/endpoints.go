package twitter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the base URL for the Twitter v1.1 REST API
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// FollowerIDsEndpoint returns follower IDs for a handle, cursor-paginated
	FollowerIDsEndpoint = "/followers/ids.json"

	// UsersLookupEndpoint resolves up to 100 user IDs to full profiles
	UsersLookupEndpoint = "/users/lookup.json"

	// MaxPageSize is the maximum number of IDs returned per followers/ids page
	MaxPageSize = 5000

	// MaxLookupBatch is the maximum number of IDs per users/lookup call
	MaxLookupBatch = 100
)

// FollowerIDsURL constructs the URL for one page of a handle's follower IDs
func FollowerIDsURL(baseURL, handle string, cursor int64, count int) string {
	if count <= 0 || count > MaxPageSize {
		count = MaxPageSize
	}

	params := url.Values{}
	params.Set("screen_name", handle)
	params.Set("cursor", strconv.FormatInt(cursor, 10))
	params.Set("count", strconv.Itoa(count))
	params.Set("stringify_ids", "true")

	return fmt.Sprintf("%s%s?%s", baseURL, FollowerIDsEndpoint, params.Encode())
}

// UsersLookupURL constructs the URL for a bulk user lookup
func UsersLookupURL(baseURL string, ids []string) string {
	params := url.Values{}
	params.Set("user_id", strings.Join(ids, ","))

	return fmt.Sprintf("%s%s?%s", baseURL, UsersLookupEndpoint, params.Encode())
}

// IsValidHandle checks if a handle is valid according to Twitter rules
func IsValidHandle(handle string) bool {
	if handle == "" || len(handle) > 15 {
		return false
	}

	// Twitter handles can only contain letters, numbers, and underscores
	for _, char := range handle {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeHandle strips a leading @ and surrounding whitespace from a handle
func SanitizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return handle
}
