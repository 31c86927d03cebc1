package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestReadDirOrdersAndFilters(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp3"))
	touch(t, filepath.Join(dir, "A.flac"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden.mp3"))
	touch(t, filepath.Join(dir, "mix.m3u"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Albums"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".cache"), 0o755))

	got, err := ReadDir(dir)
	require.NoError(t, err)

	want := []Entry{
		{Name: "Albums", Path: filepath.Join(dir, "Albums"), Kind: KindDir},
		{Name: "mix.m3u", Path: filepath.Join(dir, "mix.m3u"), Kind: KindPlaylist},
		{Name: "A.flac", Path: filepath.Join(dir, "A.flac"), Kind: KindAudio},
		{Name: "b.mp3", Path: filepath.Join(dir, "b.mp3"), Kind: KindAudio},
	}
	assert.Equal(t, want, got)
}

func TestReadDirMissing(t *testing.T) {
	_, err := ReadDir(filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
