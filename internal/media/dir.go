package media

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Kind classifies a browser entry.
type Kind int

const (
	KindAudio Kind = iota
	KindDir
	KindPlaylist
)

// Entry is one line of a directory or playlist listing.
type Entry struct {
	Name string // display name
	Path string
	Kind Kind
}

// ReadDir lists the subdirectories, playlists and playable files of dir.
// Hidden entries are skipped. Directories come first, then playlists, then
// audio, each group sorted by name.
func ReadDir(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}

		ext := filepath.Ext(name)
		switch {
		case isDir:
			entries = append(entries, Entry{Name: name, Path: path, Kind: KindDir})
		case IsPlaylistExt(ext):
			entries = append(entries, Entry{Name: name, Path: path, Kind: KindPlaylist})
		case IsSupportedExt(ext):
			entries = append(entries, Entry{Name: name, Path: path, Kind: KindAudio})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.Kind != b.Kind {
			return cmp.Compare(kindOrder(a.Kind), kindOrder(b.Kind))
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return entries, nil
}

func kindOrder(k Kind) int {
	switch k {
	case KindDir:
		return 0
	case KindPlaylist:
		return 1
	default:
		return 2
	}
}
