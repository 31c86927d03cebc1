package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/olivier-w/tapedeck/internal/player"
	"github.com/olivier-w/tapedeck/internal/util"
	"github.com/olivier-w/tapedeck/internal/visualizer"
)

const spectrumHeight = 8

// Player is the playback surface the UI drives. *player.Controller
// implements it.
type Player interface {
	Play(path string)
	Pause()
	Resume()
	Stop()
	IsPlaying() bool
	IsPaused() bool
	State() player.State
	Busy() bool
	NowPlaying() player.NowPlaying
}

// Analyzer produces the band vectors drawn by the spectrum.
// *visualizer.Visualizer implements it.
type Analyzer interface {
	AnalyzeAndUpdate() []float64
	Peaks() []float64
}

// Options configures the UI.
type Options struct {
	FPS          int
	StartDir     string
	Logger       zerolog.Logger
	LoadMetadata func(path string) <-chan player.MetadataResult
}

// Model is the Bubbletea model for the tapedeck TUI.
type Model struct {
	player   Player
	analyzer Analyzer
	browser  BrowserModel
	spectrum *visualizer.Spectrum
	log      zerolog.Logger

	frameEvery   time.Duration
	vizEvery     time.Duration
	loadMetadata func(path string) <-chan player.MetadataResult

	nowPlaying string
	metadata   player.Metadata
	pending    *playRequest
	metaCh     <-chan player.MetadataResult
	elapsed    time.Duration
	repeatMode RepeatMode
	bands      []float64

	width    int
	height   int
	quitting bool
}

// playRequest is a Play sent to the player that has not been confirmed yet.
type playRequest struct {
	path     string
	afterGen uint64
	metadata player.Metadata
}

// New creates the root model.
func New(p Player, a Analyzer, opts Options) Model {
	fps := opts.FPS
	if fps < 1 {
		fps = 30
	}
	load := opts.LoadMetadata
	if load == nil {
		load = player.LoadMetadataAsync
	}
	dir := opts.StartDir
	if dir == "" {
		dir = "."
	}

	frame := time.Second / time.Duration(fps)
	return Model{
		player:       p,
		analyzer:     a,
		browser:      NewBrowser(dir),
		spectrum:     visualizer.NewSpectrum(fps),
		log:          opts.Logger,
		frameEvery:   frame,
		vizEvery:     2 * frame,
		loadMetadata: load,
		width:        80,
		height:       24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.frameEvery),
		vizCmd(m.vizEvery),
		secondCmd(),
		tea.SetWindowTitle("tapedeck"),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case BrowserSelectedMsg:
		m.play(msg.Path)
		return m, nil

	case frameMsg:
		m.pollMetadata()
		m.spectrum.Step(m.bands)
		started := m.settlePlay()
		ended := m.checkEnded()
		return m, tea.Batch(frameCmd(m.frameEvery), started, ended)

	case vizMsg:
		m.bands = m.analyzer.AnalyzeAndUpdate()
		return m, vizCmd(m.vizEvery)

	case secondMsg:
		m.tickElapsed()
		return m, secondCmd()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.browser.SetSize(msg.Width, max(m.height-m.chromeHeight(), 3))
		return m, nil
	}

	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.browser.Filtering() {
		if isQuit(msg) {
			m.quitting = true
			m.player.Stop()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case " ":
			if m.nowPlaying == "" {
				return m, nil
			}
			paused := m.player.IsPaused()
			if paused {
				m.player.Resume()
			} else {
				m.player.Pause()
			}
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, !paused))
		case "s":
			m.stop()
			return m, tea.SetWindowTitle("tapedeck")
		case "r":
			m.repeatMode = m.repeatMode.Next()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)
	return m, cmd
}

func (m *Model) play(path string) {
	m.log.Debug().Str("path", path).Msg("play")
	base := filepath.Base(path)
	m.request(path, player.Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))})
	m.metaCh = m.loadMetadata(path)
}

func (m *Model) request(path string, meta player.Metadata) {
	m.pending = &playRequest{
		path:     path,
		afterGen: m.player.NowPlaying().Gen,
		metadata: meta,
	}
	m.player.Play(path)
}

func (m *Model) stop() {
	m.player.Stop()
	m.nowPlaying = ""
	m.pending = nil
	m.elapsed = 0
	m.metaCh = nil
}

// settlePlay promotes a pending request once the player has applied it.
// The panel keeps showing the old track if the request failed.
func (m *Model) settlePlay() tea.Cmd {
	req := m.pending
	if req == nil || m.player.Busy() {
		return nil
	}
	m.pending = nil

	np := m.player.NowPlaying()
	if np.Gen == req.afterGen || np.Path != req.path {
		m.log.Warn().Str("path", req.path).Msg("track did not start")
		return nil
	}
	m.nowPlaying = req.path
	m.metadata = req.metadata
	m.elapsed = 0
	return tea.SetWindowTitle(windowTitle(m.metadata.Title, false))
}

// pollMetadata picks up a finished metadata load without blocking. Results
// for a track that is neither current nor pending are dropped.
func (m *Model) pollMetadata() {
	if m.metaCh == nil {
		return
	}
	select {
	case res := <-m.metaCh:
		m.metaCh = nil
		switch {
		case m.pending != nil && res.Path == m.pending.path:
			m.pending.metadata = res.Metadata
		case m.pending == nil && res.Path == m.nowPlaying:
			m.metadata = res.Metadata
		}
	default:
	}
}

// checkEnded notices a track that stopped on its own.
func (m *Model) checkEnded() tea.Cmd {
	if m.nowPlaying == "" || m.pending != nil || m.player.IsPlaying() {
		return nil
	}

	if m.repeatMode == RepeatOne {
		m.log.Debug().Str("path", m.nowPlaying).Msg("repeat")
		m.request(m.nowPlaying, m.metadata)
		return nil
	}
	if m.metadata.Duration > 0 {
		m.elapsed = m.metadata.Duration
	}
	m.nowPlaying = ""
	return tea.SetWindowTitle("tapedeck")
}

func (m *Model) tickElapsed() {
	if m.nowPlaying == "" || !m.player.IsPlaying() || m.player.IsPaused() {
		return
	}
	m.elapsed += time.Second
	if d := m.metadata.Duration; d > 0 && m.elapsed > d {
		m.elapsed = d
	}
}

// chromeHeight is the number of lines above and below the browser.
func (m Model) chromeHeight() int {
	return 9 + spectrumHeight
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := max(m.width, 30)
	inner := w - 4

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("tapedeck") + "\n\n")

	title := "nothing playing"
	if m.nowPlaying != "" || m.elapsed > 0 {
		title = m.metadata.Title
	}
	b.WriteString("  " + titleStyle.Render(util.Truncate(title, inner)) + "\n")
	b.WriteString("  " + artistStyle.Render(renderSubtitle(m.metadata, inner)) + "\n")

	elapsed := util.FormatDuration(m.elapsed)
	total := util.FormatDuration(m.metadata.Duration)
	bar := renderProgressBar(m.elapsed.Seconds(), m.metadata.Duration.Seconds(), inner-len(elapsed)-len(total)-2)
	fmt.Fprintf(&b, "  %s %s %s\n", timeStyle.Render(elapsed), bar, timeStyle.Render(total))
	status := renderStatus(m.player.State(), m.repeatMode)
	if format := renderFormat(m.metadata); format != "" && m.nowPlaying != "" {
		status += "  " + format
	}
	b.WriteString("  " + statusStyle.Render(status) + "\n\n")

	b.WriteString(m.spectrum.Render(m.analyzer.Peaks(), w, spectrumHeight) + "\n\n")

	b.WriteString(m.browser.View() + "\n")
	b.WriteString("  " + helpStyle.Render(helpText(m.nowPlaying != "")))
	return b.String()
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " - tapedeck"
	}
	return "▶ " + title + " - tapedeck"
}
