package visualizer

import (
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

const (
	barWidth = 2
	barGap   = 1
	peakChar = '▔'
)

var (
	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#3CE074"})
	midStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F0C648"})
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B22222", Dark: "#F26056"})
	peakStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#FFFCD2"})
)

// Spectrum renders band vectors as bars mirrored around the centre column.
// Displayed heights follow the input through critically damped springs so
// bars glide between frames without changing the values they settle on.
type Spectrum struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

// NewSpectrum creates a renderer animating at fps frames per second.
func NewSpectrum(fps int) *Spectrum {
	if fps < 1 {
		fps = 30
	}
	return &Spectrum{spring: harmonica.NewSpring(harmonica.FPS(fps), 12.0, 1.0)}
}

// Step advances the bar animation one frame toward values.
func (s *Spectrum) Step(values []float64) {
	if len(s.pos) != len(values) {
		s.pos = make([]float64, len(values))
		s.vel = make([]float64, len(values))
	}
	for i, target := range values {
		s.pos[i], s.vel[i] = s.spring.Update(s.pos[i], s.vel[i], target)
	}
}

// Render draws the current animated heights plus peak markers into a
// width x height block.
func (s *Spectrum) Render(peaks []float64, width, height int) string {
	if width < 2 || height < 1 {
		return ""
	}
	spacing := barWidth + barGap
	perSide := min(width/2/spacing, len(s.pos)/2)
	if perSide == 0 {
		return strings.Repeat("\n", height-1)
	}

	// Left half lists bands high-to-low so the lowest band sits in the centre.
	order := make([]int, 0, perSide*2)
	for i := perSide - 1; i >= 0; i-- {
		order = append(order, i)
	}
	for i := range perSide {
		order = append(order, i)
	}

	pad := max(0, (width-len(order)*spacing+barGap)/2)
	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		line.WriteString(strings.Repeat(" ", pad))
		fromBottom := height - 1 - row
		for j, band := range order {
			if j > 0 {
				line.WriteString(strings.Repeat(" ", barGap))
			}
			var peak float64
			if band < len(peaks) {
				peak = peaks[band]
			}
			line.WriteString(renderCell(clamp01(s.pos[band]), clamp01(peak), fromBottom, height))
		}
		rows[row] = line.String()
	}
	return strings.Join(rows, "\n")
}

func renderCell(level, peak float64, fromBottom, height int) string {
	h := level * float64(height)
	peakRow := int(peak * float64(height))
	if peakRow >= height {
		peakRow = height - 1
	}

	var ch rune
	switch {
	case h >= float64(fromBottom+1):
		ch = barChars[len(barChars)-1]
	case h > float64(fromBottom):
		frac := h - float64(fromBottom)
		ch = barChars[int(frac*float64(len(barChars)-1))]
	case fromBottom == 0:
		ch = barChars[1]
	case peak > 0.02 && fromBottom == peakRow:
		return peakStyle.Render(strings.Repeat(string(peakChar), barWidth))
	default:
		return strings.Repeat(" ", barWidth)
	}

	style := lowStyle
	switch frac := float64(fromBottom) / float64(height); {
	case frac > 0.75:
		style = highStyle
	case frac > 0.45:
		style = midStyle
	}
	return style.Render(strings.Repeat(string(ch), barWidth))
}
