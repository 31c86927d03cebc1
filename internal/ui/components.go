package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olivier-w/tapedeck/internal/player"
	"github.com/olivier-w/tapedeck/internal/util"
)

func renderProgressBar(elapsed, total float64, width int) string {
	barWidth := max(width, 10) - 2

	var ratio float64
	if total > 0 {
		ratio = min(max(elapsed/total, 0), 1)
	}
	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

func renderStatus(state player.State, repeat RepeatMode) string {
	var s string
	switch state {
	case player.Playing:
		s = "▶  playing"
	case player.Paused:
		s = "❚❚ paused"
	default:
		s = "■  stopped"
	}
	if icon := repeat.Icon(); icon != "" {
		s += "  " + icon
	}
	return s
}

func renderSubtitle(m player.Metadata, width int) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{m.Artist, m.Album} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, " - ")
	if m.Year != "" {
		s = strings.TrimSpace(fmt.Sprintf("%s (%s)", s, m.Year))
	}
	return util.Truncate(s, width)
}

// renderFormat describes the stream, e.g. "44.1 kHz stereo 320 kbps".
func renderFormat(m player.Metadata) string {
	if m.SampleRate <= 0 {
		return ""
	}
	parts := []string{strconv.FormatFloat(float64(m.SampleRate)/1000, 'f', -1, 64) + " kHz"}
	switch m.Channels {
	case 1:
		parts = append(parts, "mono")
	case 2:
		parts = append(parts, "stereo")
	default:
		if m.Channels > 2 {
			parts = append(parts, fmt.Sprintf("%dch", m.Channels))
		}
	}
	if m.Bitrate > 0 {
		parts = append(parts, fmt.Sprintf("%d kbps", m.Bitrate))
	}
	return strings.Join(parts, " ")
}
