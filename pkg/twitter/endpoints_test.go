package twitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidHandle(t *testing.T) {
	valid := []string{"jack", "Jack_Dorsey", "user123", "a", "_", "fifteen_chars_x"}
	for _, handle := range valid {
		assert.True(t, IsValidHandle(handle), "expected %q to be valid", handle)
	}

	invalid := []string{"", "sixteen_chars_xx", "has space", "dot.name", "héllo", "@jack"}
	for _, handle := range invalid {
		assert.False(t, IsValidHandle(handle), "expected %q to be invalid", handle)
	}
}

func TestSanitizeHandle(t *testing.T) {
	assert.Equal(t, "jack", SanitizeHandle("@jack"))
	assert.Equal(t, "jack", SanitizeHandle("  jack  "))
	assert.Equal(t, "jack", SanitizeHandle(" @jack "))
	assert.Equal(t, "jack", SanitizeHandle("jack"))
}

func TestFollowerIDsURLClampsCount(t *testing.T) {
	url := FollowerIDsURL(DefaultBaseURL, "jack", CursorStart, 99999)
	assert.Contains(t, url, "count=5000")

	url = FollowerIDsURL(DefaultBaseURL, "jack", CursorStart, 0)
	assert.Contains(t, url, "count=5000")

	url = FollowerIDsURL(DefaultBaseURL, "jack", CursorStart, 200)
	assert.Contains(t, url, "count=200")
}

func TestUsersLookupURLJoinsIDs(t *testing.T) {
	url := UsersLookupURL(DefaultBaseURL, []string{"1", "2", "3"})
	assert.Contains(t, url, "user_id=1%2C2%2C3")
	assert.Contains(t, url, UsersLookupEndpoint)
}
