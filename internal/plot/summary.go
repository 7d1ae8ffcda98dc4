package plot

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/ampliconplot/internal/stats"
)

// ChannelPages is the number of pages one heatmap channel produced.
type ChannelPages struct {
	Key   string
	Pages int
}

// Summary describes a finished run.
type Summary struct {
	Metadata stats.Metadata
	// Lines is the number of input lines read.
	Lines int
	// Skipped counts recognized records whose values could not be parsed.
	Skipped      int
	Samples      int
	Heatmaps     []ChannelPages
	Combined     int
	SampleCharts int
	Scripts      []string
}

// HeatmapPages is the total number of heatmap pages across channels.
func (s *Summary) HeatmapPages() int {
	n := 0
	for _, h := range s.Heatmaps {
		n += h.Pages
	}
	return n
}

var (
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	summaryLabel = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("8"))
	summaryValue = lipgloss.NewStyle().Bold(true)
	summaryWarn  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// Render writes a styled report of the run to w.
func (s *Summary) Render(w io.Writer) {
	var b strings.Builder
	b.WriteString(summaryTitle.Render("ampliconplot summary"))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString(summaryLabel.Render(label))
		b.WriteString(summaryValue.Render(value))
		b.WriteString("\n")
	}
	row("amplicons", fmt.Sprint(s.Metadata.Amplicons))
	row("files", fmt.Sprint(s.Metadata.Files))
	row("samples", fmt.Sprint(s.Samples))
	row("lines read", fmt.Sprint(s.Lines))
	for _, h := range s.Heatmaps {
		row("heatmap "+h.Key, fmt.Sprintf("%d page(s)", h.Pages))
	}
	row("combined charts", fmt.Sprint(s.Combined))
	row("sample charts", fmt.Sprint(s.SampleCharts))
	row("scripts", fmt.Sprint(len(s.Scripts)))
	if s.Skipped > 0 {
		b.WriteString(summaryWarn.Render(fmt.Sprintf("%d malformed record(s) skipped", s.Skipped)))
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}
