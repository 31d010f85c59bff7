package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func TestStore_SaveAndLoadSession(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	want := Session{Index: 2, Volume: 0.7, SavedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, s.SaveSession("playlists/morning.m3u", want))

	got, found, err := s.LoadSession("playlists/morning.m3u")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.Index, got.Index)
	assert.Equal(t, want.Volume, got.Volume)
	assert.True(t, want.SavedAt.Equal(got.SavedAt))
}

func TestStore_LoadMissingSession(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	_, found, err := s.LoadSession("never-played.m3u")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.SaveSession("morning.m3u", Session{Index: 1, Volume: 0.5}))
	require.NoError(t, s.SaveSession("morning.m3u", Session{Index: 4, Volume: 0.9}))

	got, found, err := s.LoadSession("morning.m3u")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, got.Index)
	assert.Equal(t, 0.9, got.Volume)
}

func TestStore_SourcesAreIndependent(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.SaveSession("morning.m3u", Session{Index: 1}))
	require.NoError(t, s.SaveSession("evening.m3u", Session{Index: 7}))

	morning, found, err := s.LoadSession("morning.m3u")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, morning.Index)

	evening, found, err := s.LoadSession("evening.m3u")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, evening.Index)
}

func TestStore_DeleteSession(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.SaveSession("morning.m3u", Session{Index: 3}))
	require.NoError(t, s.DeleteSession("morning.m3u"))

	_, found, err := s.LoadSession("morning.m3u")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSession("morning.m3u", Session{Index: 5, Volume: 0.3}))
	require.NoError(t, s.Close())

	s = openTestStore(t, path)
	got, found, err := s.LoadSession("morning.m3u")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, got.Index)
	assert.Equal(t, 0.3, got.Volume)
}
