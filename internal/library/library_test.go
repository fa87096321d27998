package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chordsheet/internal/catalog"
	"chordsheet/internal/markup"
	"chordsheet/internal/song"
	"chordsheet/internal/source"
)

func writeSong(t *testing.T, dir, name, text string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func newTestLibrary(t *testing.T, root string, ttl time.Duration) *Library {
	t.Helper()
	return New(Options{
		Dir:     source.NewDir(root),
		Cache:   catalog.NewCache(filepath.Join(root, ".chordsheet", "index.json")),
		TTL:     ttl,
		Workers: 2,
	})
}

func TestShouldUseCache(t *testing.T) {
	now := time.Date(2026, time.February, 13, 10, 0, 0, 0, time.UTC)

	assert.True(t, ShouldUseCache(now.Add(-23*time.Hour), 24*time.Hour, now), "within TTL")
	assert.False(t, ShouldUseCache(now.Add(-25*time.Hour), 24*time.Hour, now), "stale")
	assert.False(t, ShouldUseCache(time.Time{}, 24*time.Hour, now), "missing timestamp")
	assert.True(t, ShouldUseCache(now.Add(-365*24*time.Hour), 0, now), "disabled TTL")
}

func TestScanReadsHeadersAndSkipsOtherFiles(t *testing.T) {
	root := t.TempDir()
	writeSong(t, root, "grace.cho", "{title: Amazing Grace}\n{key: G}\n[G]Amazing")
	writeSong(t, root, "hymns/doxology.chordpro", "{title: Doxology}\n{key: Bb}\n")
	writeSong(t, root, "broken.txt", "{title: No Key}\n")
	writeSong(t, root, "cover.png", "not a song")
	writeSong(t, root, ".chordsheet/hidden.cho", "{title: Hidden}\n{key: C}\n")

	lib := newTestLibrary(t, root, time.Hour)
	entries, err := lib.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Amazing Grace", entries[0].Title)
	assert.Equal(t, "G", entries[0].Key)
	assert.Equal(t, EntryID("grace.cho"), entries[0].ID)

	assert.Equal(t, "broken.txt", entries[1].Name, "untitled songs sort by file name")
	assert.Contains(t, entries[1].Problem, song.ErrMissingTitle.Error())

	assert.Equal(t, "hymns/doxology.chordpro", entries[2].Name)
	assert.Equal(t, "Bb", entries[2].Key)
	assert.Empty(t, entries[2].Problem)
}

func TestIndexUsesFreshCache(t *testing.T) {
	root := t.TempDir()
	writeSong(t, root, "grace.cho", "{title: Amazing Grace}\n{key: G}\n")

	lib := newTestLibrary(t, root, time.Hour)
	first, err := lib.Index(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	writeSong(t, root, "new.cho", "{title: New Song}\n{key: C}\n")

	cached, err := lib.Index(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, cached, 1, "fresh cache is reused without scanning")

	refreshed, err := lib.Index(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
}

func TestIndexRescansStaleCacheIncrementally(t *testing.T) {
	root := t.TempDir()
	writeSong(t, root, "grace.cho", "{title: Amazing Grace}\n{key: G}\n")

	lib := newTestLibrary(t, root, time.Minute)
	_, err := lib.Index(context.Background(), false)
	require.NoError(t, err)

	lib.now = func() time.Time { return time.Now().Add(time.Hour) }
	path := filepath.Join(root, "grace.cho")
	require.NoError(t, os.WriteFile(path, []byte("{title: Grace Renamed}\n{key: A}\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	entries, err := lib.Index(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Grace Renamed", entries[0].Title)
	assert.Equal(t, "A", entries[0].Key)
}

func TestIndexWithoutDirectory(t *testing.T) {
	lib := New(Options{})
	_, err := lib.Index(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoListing)
}

func TestLoadAndCheck(t *testing.T) {
	root := t.TempDir()
	writeSong(t, root, "grace.cho", "{title: Amazing Grace}\n{key: C}\n[C]Amazing [F]grace")
	writeSong(t, root, "bad.cho", "{title: Bad}\n{key: C}\n[C")

	lib := newTestLibrary(t, root, time.Hour)
	s, err := lib.Load(context.Background(), "grace.cho", "D")
	require.NoError(t, err)
	assert.Equal(t, "D", s.Key)

	entries, err := lib.Index(context.Background(), false)
	require.NoError(t, err)

	problems, err := lib.Check(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "bad.cho", problems[0].Name)
	assert.True(t, errors.Is(problems[0].Err, markup.ErrUnterminatedChordBracket), "got %v", problems[0].Err)
}
