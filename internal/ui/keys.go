package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func isBack(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "backspace", "left", "h":
		return true
	}
	return false
}

func helpText(playing bool) string {
	s := "enter open  ⌫ back  / filter"
	if playing {
		s += "  space pause  s stop"
	}
	return s + "  r repeat  q quit"
}
