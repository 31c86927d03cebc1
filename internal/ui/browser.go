package ui

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/tapedeck/internal/media"
)

type entryItem struct {
	media.Entry
}

func (i entryItem) Title() string {
	if i.Kind == media.KindDir {
		return i.Name + "/"
	}
	return i.Name
}

func (i entryItem) Description() string {
	switch i.Kind {
	case media.KindDir:
		return "directory"
	case media.KindPlaylist:
		return "playlist"
	default:
		return filepath.Ext(i.Name)
	}
}

func (i entryItem) FilterValue() string { return i.Name }

// BrowserModel lists a directory or playlist and lets the user walk the
// tree. Choosing an audio file emits a BrowserSelectedMsg.
type BrowserModel struct {
	list    list.Model
	loc     string   // directory or playlist being shown
	history []string // locations to return to
	err     error
}

// NewBrowser creates a browser showing dir.
func NewBrowser(dir string) BrowserModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(nil, delegate, 80, 20)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = headerStyle

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m := BrowserModel{list: l}
	m.load(dir)
	return m
}

// Location returns the directory or playlist being shown.
func (m BrowserModel) Location() string { return m.loc }

// Error returns the error from the last load, if any.
func (m BrowserModel) Error() error { return m.err }

// Filtering reports whether the filter input has focus.
func (m BrowserModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *BrowserModel) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m *BrowserModel) load(loc string) bool {
	var (
		entries []media.Entry
		err     error
	)
	if media.IsPlaylistExt(filepath.Ext(loc)) {
		entries, err = media.ReadPlaylist(loc)
	} else {
		entries, err = media.ReadDir(loc)
	}
	if err != nil {
		m.err = err
		return false
	}

	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{e}
	}
	m.list.ResetFilter()
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.list.Title = filepath.Base(loc)
	m.loc = loc
	m.err = nil
	return true
}

func (m *BrowserModel) open(e media.Entry) tea.Cmd {
	if e.Kind == media.KindAudio {
		path := e.Path
		return func() tea.Msg { return BrowserSelectedMsg{Path: path} }
	}
	prev := m.loc
	if m.load(e.Path) {
		m.history = append(m.history, prev)
	}
	return nil
}

// back returns to the previous location, or the parent directory when there
// is no history.
func (m *BrowserModel) back() {
	if n := len(m.history); n > 0 {
		if m.load(m.history[n-1]) {
			m.history = m.history[:n-1]
		}
		return
	}
	if parent := filepath.Dir(m.loc); parent != m.loc {
		m.load(parent)
	}
}

func (m BrowserModel) Update(msg tea.Msg) (BrowserModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.String() == "enter":
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				return m, m.open(item.Entry)
			}
			return m, nil
		case isBack(key):
			m.back()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.err != nil {
		return m.list.View() + "\n  " + errorStyle.Render(m.err.Error())
	}
	return m.list.View()
}
