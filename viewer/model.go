// Package viewer renders a finished analysis in the terminal. It is a
// read-only presentation layer: every number it shows was computed by the
// analysis and nothing is recalculated here.
package viewer

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	climbnotes "climb-analyzer"
)

const (
	chartWidth  = 64
	chartHeight = 8
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	bestStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	chartStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)
)

// Model is the BubbleTea model for the session viewer.
type Model struct {
	analysis *climbnotes.Analysis
	force    []float64
	quitting bool
}

// NewModel builds a viewer over a finished analysis and its raw force
// series (newtons, sample order).
func NewModel(analysis *climbnotes.Analysis, forceN []float64) Model {
	return Model{
		analysis: analysis,
		force:    downsampleMax(forceN, chartWidth),
	}
}

// Init implements tea.Model. The viewer is static; nothing to start.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.analysis == nil {
		return ""
	}
	a := m.analysis

	var content strings.Builder
	content.WriteString(headerStyle.Render(" Climbing Data Analysis "))
	content.WriteString("\n")
	content.WriteString(labelStyle.Render("Recording: ") +
		valueStyle.Render(fmt.Sprintf("%d samples", a.SampleCount)) +
		dimStyle.Render(fmt.Sprintf("  %.1fs  max %.1f N", a.DurationS, a.MaxForceN)))
	content.WriteString("\n")

	content.WriteString("\n" + sectionStyle.Render("┃ Force (N)") + "\n")
	content.WriteString(renderForceChart(m.force) + "\n")

	content.WriteString("\n" + sectionStyle.Render("┃ Efforts") + "\n")
	if len(a.Efforts) == 0 {
		content.WriteString(dimStyle.Render("  no efforts detected") + "\n")
	}
	for _, e := range a.Efforts {
		rfd := dimStyle.Render("RFD n/a")
		if e.RFDNPerS != nil {
			rfd = labelStyle.Render("RFD ") + valueStyle.Render(fmt.Sprintf("%.2f N/s", *e.RFDNPerS)) +
				dimStyle.Render(fmt.Sprintf(" (%.2f kg/s)", *e.RFDKGPerS))
		}
		content.WriteString(fmt.Sprintf(
			"  %s %s %s  %s\n",
			labelStyle.Render(fmt.Sprintf("#%02d", e.Index)),
			valueStyle.Render(fmt.Sprintf("%5.1f kg / %6.1f N", e.PeakKG, e.PeakN)),
			dimStyle.Render(fmt.Sprintf("%.2fs to peak", e.TimeToPeakS)),
			rfd,
		))
	}
	if a.BestRFDNPerS != nil {
		content.WriteString(bestStyle.Render(fmt.Sprintf("  Best RFD: %.2f N/s", *a.BestRFDNPerS)) + "\n")
	}

	if a.Structure.CanonicalLabel != "" {
		content.WriteString("\n" + sectionStyle.Render("┃ Protocol") + "\n")
		content.WriteString("  " + valueStyle.Render(a.Structure.CanonicalLabel) +
			dimStyle.Render(fmt.Sprintf("  (confidence %.0f%%)", a.Structure.Confidence*100)) + "\n")
	}

	for _, w := range a.Warnings {
		content.WriteString("\n" + warnStyle.Render("⚠ "+w))
	}

	content.WriteString("\n" + footerStyle.Render("") +
		footerKeyStyle.Render("[q]") + footerStyle.Render(" quit"))

	return containerStyle.Render(content.String())
}

func renderForceChart(force []float64) string {
	if len(force) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", chartWidth, "no data"))
	}
	spark := sparkline.New(chartWidth, chartHeight)
	for _, v := range force {
		spark.Push(v)
	}
	return chartStyle.Render(spark.View())
}

// downsampleMax reduces the series to at most width points, keeping each
// bucket's maximum so peaks stay visible.
func downsampleMax(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, 0, width)
	bucket := float64(len(values)) / float64(width)
	for i := 0; i < width; i++ {
		start := int(float64(i) * bucket)
		end := int(float64(i+1) * bucket)
		if end > len(values) {
			end = len(values)
		}
		if start >= end {
			continue
		}
		m := values[start]
		for _, v := range values[start+1 : end] {
			if v > m {
				m = v
			}
		}
		out = append(out, m)
	}
	return out
}
