package media

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ReadPlaylist parses a local .m3u/.m3u8/.pls file and returns the entries
// that point at existing playable files. Relative entries are resolved
// against the playlist's directory; remote URLs are dropped.
func ReadPlaylist(path string) ([]Entry, error) {
	paths, err := ParseLocalPlaylist(path)
	if err != nil {
		return nil, err
	}
	paths = FilterPlayableLocalPaths(paths)

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, Entry{Name: filepath.Base(p), Path: p, Kind: KindAudio})
	}
	return entries, nil
}

// ParseLocalPlaylist returns the raw entry paths of a playlist file.
func ParseLocalPlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	text := strings.TrimPrefix(string(data), "\uFEFF")
	scanner := bufio.NewScanner(strings.NewReader(text))
	baseDir := filepath.Dir(abs)
	if ext == ".pls" {
		return parsePLS(scanner, baseDir), nil
	}
	return parseM3U(scanner, baseDir), nil
}

// FilterPlayableLocalPaths keeps existing, non-directory, supported files.
func FilterPlayableLocalPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if isRemote(p) || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), `"`)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, resolveEntry(line, baseDir))
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if val == "" || !isPLSFileKey(key) {
			continue
		}
		entries = append(entries, resolveEntry(val, baseDir))
	}
	return entries
}

// isPLSFileKey matches File1, File2, ... case-insensitively.
func isPLSFileKey(key string) bool {
	if len(key) <= 4 || !strings.EqualFold(key[:4], "file") {
		return false
	}
	for _, r := range key[4:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func resolveEntry(raw, baseDir string) string {
	if isRemote(raw) {
		return raw
	}
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func isRemote(s string) bool {
	return strings.Contains(s, "://")
}
