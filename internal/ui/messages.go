package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg drives redraws and spring animation.
type frameMsg time.Time

// vizMsg runs one analysis cycle.
type vizMsg time.Time

// secondMsg advances the elapsed clock.
type secondMsg time.Time

// BrowserSelectedMsg is sent when an audio file is chosen in the browser.
type BrowserSelectedMsg struct {
	Path string
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func vizCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return vizMsg(t) })
}

func secondCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return secondMsg(t) })
}
