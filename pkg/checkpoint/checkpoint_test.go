package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/twitter"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManagerIn(t.TempDir(), "jack")
	require.NoError(t, err)
	return m
}

func TestCreateAndLoad(t *testing.T) {
	m := newTestManager(t)

	created, err := m.Create("jack")
	require.NoError(t, err)
	assert.Equal(t, twitter.CursorStart, created.Cursor)
	assert.False(t, created.IDFetchDone())
	assert.True(t, m.Exists())

	loaded, err := m.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "jack", loaded.Handle)
	assert.Equal(t, twitter.CursorStart, loaded.Cursor)
	assert.Equal(t, 1, loaded.Version)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	m := newTestManager(t)

	cp, err := m.Load()
	require.NoError(t, err)
	assert.Nil(t, cp)
	assert.False(t, m.Exists())
}

func TestUpdateCursorAccumulatesPending(t *testing.T) {
	m := newTestManager(t)

	cp, err := m.Create("jack")
	require.NoError(t, err)

	require.NoError(t, m.UpdateCursor(cp, 500, []string{"1", "2", "3"}))
	require.NoError(t, m.UpdateCursor(cp, twitter.CursorEnd, []string{"4"}))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, twitter.CursorEnd, loaded.Cursor)
	assert.True(t, loaded.IDFetchDone())
	assert.Equal(t, []string{"1", "2", "3", "4"}, loaded.PendingIDs)
	assert.Equal(t, 4, loaded.TotalFetched)
}

func TestSetPendingReplacesBacklog(t *testing.T) {
	m := newTestManager(t)

	cp, err := m.Create("jack")
	require.NoError(t, err)
	require.NoError(t, m.UpdateCursor(cp, twitter.CursorEnd, []string{"1", "2", "3"}))

	require.NoError(t, m.SetPending(cp, []string{"3"}))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, loaded.PendingIDs)
	assert.Equal(t, 3, loaded.TotalFetched)
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create("jack")
	require.NoError(t, err)
	require.True(t, m.Exists())

	require.NoError(t, m.Delete())
	assert.False(t, m.Exists())

	// Deleting again is not an error
	assert.NoError(t, m.Delete())
}

func TestLoadCorruptCheckpoint(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManagerIn(dir, "jack")
	require.NoError(t, err)

	path := filepath.Join(dir, "jack.checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err = m.Load()
	assert.Error(t, err)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManagerIn(dir, "jack")
	require.NoError(t, err)

	_, err = m.Create("jack")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jack.checkpoint.json", entries[0].Name())
}
