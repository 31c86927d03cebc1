package player

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds song information.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Year     string
	Genre    string
	Lyrics   string
	Duration time.Duration

	SampleRate int
	Channels   int
	Bitrate    int // average kbit/s over the whole file
}

// MetadataResult is delivered by LoadMetadataAsync.
type MetadataResult struct {
	Path     string
	Metadata Metadata
}

// LoadMetadata reads ID3v2 tags and the stream length of the file at path.
// Files without a title tag fall back to the file name.
func LoadMetadata(path string) Metadata {
	var m Metadata
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		m = readTags(path)
	}
	if m.Title == "" {
		base := filepath.Base(path)
		m.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if t, err := Open(path); err == nil {
		m.Duration = Duration(t)
		m.SampleRate = t.SampleRate()
		m.Channels = t.ChannelCount()
		t.Close()
	}
	if info, err := os.Stat(path); err == nil && m.Duration > 0 {
		m.Bitrate = int(float64(info.Size()) * 8 / m.Duration.Seconds() / 1000)
	}
	return m
}

// LoadMetadataAsync runs LoadMetadata on its own goroutine. The returned
// channel receives exactly one result and is never closed, so callers can
// poll it with a non-blocking receive.
func LoadMetadataAsync(path string) <-chan MetadataResult {
	ch := make(chan MetadataResult, 1)
	go func() {
		ch <- MetadataResult{Path: path, Metadata: LoadMetadata(path)}
	}()
	return ch
}

func readTags(path string) Metadata {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{}
	}
	defer tag.Close()
	m := Metadata{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
		Year:   strings.TrimSpace(tag.Year()),
		Genre:  strings.TrimSpace(tag.Genre()),
	}
	for _, f := range tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")) {
		if uslf, ok := f.(id3v2.UnsynchronisedLyricsFrame); ok && strings.TrimSpace(uslf.Lyrics) != "" {
			m.Lyrics = strings.TrimSpace(uslf.Lyrics)
			break
		}
	}
	return m
}
