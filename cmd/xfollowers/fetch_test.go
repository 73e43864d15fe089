package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/config"
	"xfollowers/pkg/store"
)

func TestNeedsRemoteFetch(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Output.CacheDirectory = dir

	// Normal mode always contacts the API
	assert.True(t, needsRemoteFetch(cfg, "jack"))

	// Cache-only with no cache file falls through to a remote fetch,
	// so credentials are still required
	cfg.Fetch.CacheOnly = true
	assert.True(t, needsRemoteFetch(cfg, "jack"))

	// Cache-only with an existing cache file stays offline
	require.NoError(t, os.WriteFile(store.CacheFilePath(dir, "jack"), []byte("timestamp,id\n"), 0644))
	assert.False(t, needsRemoteFetch(cfg, "jack"))

	// The handle is sanitized the same way the tracker sanitizes it
	assert.False(t, needsRemoteFetch(cfg, "@jack"))
	assert.False(t, needsRemoteFetch(cfg, "  jack  "))
}
