package screens

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/dailyhill/internal/report"
	"github.com/emilianohg/dailyhill/internal/streak"
)

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen     string
	Instructor string
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateWithInstructor(screen, instructor string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, Instructor: instructor}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

type exportDoneMsg struct {
	path string
	err  error
}

// exportCSV writes a timestamped prefix_*.csv into dir. write must only use
// data captured when the command was built.
func exportCSV(dir, prefix string, write func(io.Writer) error) tea.Cmd {
	return func() tea.Msg {
		f, err := report.Create(dir, prefix, time.Now())
		if err != nil {
			return exportDoneMsg{err: err}
		}
		defer f.Close()

		if err := write(f); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: f.Name()}
	}
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// SeverityStyle colours a severity bucket.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case streak.SeverityCritical:
		return ErrorStyle
	case streak.SeverityHigh:
		return WarningStyle
	case streak.SeverityMedium:
		return NormalStyle
	default:
		return DimStyle
	}
}

// listWindow returns the [start, end) slice of a list of n rows that keeps
// cursor visible in height rows.
func listWindow(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(0, min(start, n-height))
	return start, start + height
}
